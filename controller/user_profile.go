package controller

import (
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/forum_service/service"
)

// UserProfileController 定义用户资料镜像控制器的结构体
type UserProfileController struct {
	profileService service.UserProfileService
}

// NewUserProfileController 构造函数，用于创建 UserProfileController 实例
func NewUserProfileController(profileService service.UserProfileService) *UserProfileController {
	return &UserProfileController{
		profileService: profileService,
	}
}

// GetUserProfile 获取用户资料镜像
// @Summary      获取用户资料 (公开)
// @Description  查询本服务维护的用户资料镜像，数据由用户服务的同步事件驱动更新。
// @Tags         users (用户)
// @Accept       json
// @Produce      json
// @Param        user_id path uint64 true "用户 ID" format(uint64) minimum(1)
// @Success      200 {object} vo.BaseResponseWrapper "成功响应，包含用户资料"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的路径参数"
// @Failure      404 {object} vo.BaseResponseWrapper "用户不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/users/{user_id} [get]
func (ctrl *UserProfileController) GetUserProfile(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	profileVO, err := ctrl.profileService.GetUserProfileByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, profileVO, "用户资料获取成功")
}

// RegisterRoutes 注册用户资料路由
func (ctrl *UserProfileController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/users/:user_id", ctrl.GetUserProfile) // GET /api/v1/forum/users/:user_id
}
