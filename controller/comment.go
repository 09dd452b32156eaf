package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/forum_service/models/dto"
	"github.com/Xushengqwer/forum_service/service"
)

// CommentController 定义评论控制器的结构体
type CommentController struct {
	commentService service.CommentService
}

// NewCommentController 构造函数，用于创建 CommentController 实例
func NewCommentController(commentService service.CommentService) *CommentController {
	return &CommentController{
		commentService: commentService,
	}
}

// CreateComment 发表评论
// @Summary      发表评论
// @Description  在帖子下发表评论或回复（通过 parent_id 指定父评论，空或 "null" 表示顶层评论），支持携带附件（files 字段）。
// @Tags         comments (评论)
// @Accept       multipart/form-data
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID" format(uint64) minimum(1)
// @Param        content formData string true "评论内容"
// @Param        parent_id formData string false "父评论 ID，空或 null 表示顶层评论"
// @Param        files formData file false "附件文件，可多个"
// @Success      200 {object} vo.CommentResponseWrapper "成功响应，包含新建评论"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数或父评论不属于该帖子"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权或认证失败"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子或父评论不存在"
// @Failure      502 {object} vo.BaseResponseWrapper "附件上传失败"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/{post_id}/comments [post]
func (ctrl *CommentController) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	var reqDTO dto.CreateCommentRequest
	if err := c.ShouldBind(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求参数: "+err.Error())
		return
	}

	files, err := readMultipartFiles(c, "files")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "读取上传文件失败: "+err.Error())
		return
	}

	commentVO, err := ctrl.commentService.CreateComment(c.Request.Context(), userID, postID, &reqDTO, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, commentVO, "评论创建成功")
}

// ListComments 获取评论列表
// @Summary      获取评论列表 (公开)
// @Description  分页获取帖子下的可见评论，按创建时间正序，每页固定 10 条。已删除的评论不出现在列表中，但回复中对其的引用会标记删除状态。
// @Tags         comments (评论)
// @Accept       json
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID" format(uint64) minimum(1)
// @Param        page query int false "页码 (从1开始)" format(int32) minimum(1) default(1)
// @Success      200 {object} vo.CommentListResponseWrapper "成功响应，包含评论列表和总记录数"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/{post_id}/comments [get]
func (ctrl *CommentController) ListComments(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	var reqDTO dto.ListCommentsRequest
	if err := c.ShouldBindQuery(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	listVO, err := ctrl.commentService.ListComments(c.Request.Context(), postID, &reqDTO)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, listVO, "评论列表获取成功")
}

// UpdateComment 更新评论
// @Summary      更新评论
// @Description  更新评论的内容与附件，仅作者本人可操作，已删除的评论不可编辑。
// @Tags         comments (评论)
// @Accept       multipart/form-data
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID" format(uint64) minimum(1)
// @Param        comment_id path uint64 true "评论 ID" format(uint64) minimum(1)
// @Param        content formData string true "评论内容"
// @Param        old_file_paths formData []string false "保留的旧附件 URL 列表" collectionFormat(multi)
// @Param        new_files formData file false "新附件文件，可多个"
// @Success      200 {object} vo.CommentResponseWrapper "成功响应，包含更新后的评论"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数或评论不属于该帖子"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权或认证失败"
// @Failure      403 {object} vo.BaseResponseWrapper "非评论作者"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Failure      409 {object} vo.BaseResponseWrapper "评论已删除，不可编辑"
// @Failure      502 {object} vo.BaseResponseWrapper "附件上传失败"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/{post_id}/comments/{comment_id} [put]
func (ctrl *CommentController) UpdateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}

	var reqDTO dto.UpdateCommentRequest
	if err := c.ShouldBind(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求参数: "+err.Error())
		return
	}

	newFiles, err := readMultipartFiles(c, "new_files")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "读取上传文件失败: "+err.Error())
		return
	}

	commentVO, err := ctrl.commentService.UpdateComment(c.Request.Context(), userID, postID, commentID, &reqDTO, newFiles)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, commentVO, "评论更新成功")
}

// DeleteComment 删除评论
// @Summary      删除评论
// @Description  软删除评论：内容与附件被抹除，评论行保留以维持回复树完整。作者本人或管理员可操作。
// @Tags         comments (评论)
// @Accept       json
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID" format(uint64) minimum(1)
// @Param        comment_id path uint64 true "评论 ID" format(uint64) minimum(1)
// @Success      200 {object} vo.BaseResponseWrapper "删除成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的路径参数或评论不属于该帖子"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权或认证失败"
// @Failure      403 {object} vo.BaseResponseWrapper "非作者且非管理员"
// @Failure      404 {object} vo.BaseResponseWrapper "评论或操作者资料不存在"
// @Failure      409 {object} vo.BaseResponseWrapper "评论已删除"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/{post_id}/comments/{comment_id} [delete]
func (ctrl *CommentController) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}

	if err := ctrl.commentService.DeleteComment(c.Request.Context(), userID, postID, commentID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "评论删除成功")
}

// RegisterRoutes 注册评论相关路由，评论始终挂在帖子路径之下
func (ctrl *CommentController) RegisterRoutes(group *gin.RouterGroup) {
	comments := group.Group("/posts/:post_id/comments")
	{
		comments.POST("", ctrl.CreateComment)               // POST /api/v1/forum/posts/:post_id/comments
		comments.GET("", ctrl.ListComments)                 // GET /api/v1/forum/posts/:post_id/comments
		comments.PUT("/:comment_id", ctrl.UpdateComment)    // PUT /api/v1/forum/posts/:post_id/comments/:comment_id
		comments.DELETE("/:comment_id", ctrl.DeleteComment) // DELETE /api/v1/forum/posts/:post_id/comments/:comment_id
	}
}
