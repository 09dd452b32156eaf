package controller

import (
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/forum_service/service"
)

// HotPostController 定义热帖榜单控制器的结构体
type HotPostController struct {
	hotPostService service.HotPostService
}

// NewHotPostController 构造函数，用于创建 HotPostController 实例
func NewHotPostController(hotPostService service.HotPostService) *HotPostController {
	return &HotPostController{
		hotPostService: hotPostService,
	}
}

// GetHotPosts 获取热帖榜单
// @Summary      获取热帖榜单 (公开)
// @Description  按热度分值（浏览量 + 评论数*10）降序返回榜单帖子，榜单由后台任务定时刷新。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Param        limit query int false "返回数量上限" format(int32) minimum(1) maximum(50) default(50)
// @Success      200 {object} vo.PostListResponseWrapper "成功响应，包含热帖列表"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的查询参数"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/hot [get]
func (ctrl *HotPostController) GetHotPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: limit")
			return
		}
		limit = parsed
	}

	posts, err := ctrl.hotPostService.GetHotPosts(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, posts, "热帖榜单获取成功")
}

// RegisterRoutes 注册热帖榜单路由
func (ctrl *HotPostController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/posts/hot", ctrl.GetHotPosts) // GET /api/v1/forum/posts/hot
}
