package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/forum_service/models/dto"
	"github.com/Xushengqwer/forum_service/service"
)

// PostController 定义帖子控制器的结构体
type PostController struct {
	postService service.PostService
}

// NewPostController 构造函数，用于创建 PostController 实例
func NewPostController(postService service.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

// CreatePost 发布新帖子
// @Summary      发布帖子
// @Description  创建新帖子，支持携带附件（multipart 的 files 字段，可多文件）。附件任一上传失败则整体失败。
// @Tags         posts (帖子)
// @Accept       multipart/form-data
// @Produce      json
// @Param        title formData string true "帖子标题 (最大长度 255)"
// @Param        content formData string true "帖子正文"
// @Param        files formData file false "附件文件，可多个"
// @Success      200 {object} vo.PostResponseWrapper "成功响应，包含新建帖子"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权或认证失败"
// @Failure      502 {object} vo.BaseResponseWrapper "附件上传失败"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts [post]
func (ctrl *PostController) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var reqDTO dto.CreatePostRequest
	if err := c.ShouldBind(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求参数: "+err.Error())
		return
	}

	files, err := readMultipartFiles(c, "files")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "读取上传文件失败: "+err.Error())
		return
	}

	postVO, err := ctrl.postService.CreatePost(c.Request.Context(), userID, &reqDTO, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, postVO, "帖子创建成功")
}

// ListPosts 获取帖子列表
// @Summary      获取帖子列表 (公开)
// @Description  分页获取帖子列表，支持关键词搜索（标题/正文）、作者角色筛选和按时间或热度排序。每页固定 10 条。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Param        page query int false "页码 (从1开始)" format(int32) minimum(1) default(1)
// @Param        search query string false "标题模糊搜索关键词"
// @Param        filter query string false "作者角色筛选" Enums(ALL,MEMBER,ADMIN) default(ALL)
// @Param        sort query string false "排序方式: time(时间倒序)/trend(热度倒序)" Enums(time,trend) default(time)
// @Success      200 {object} vo.PostListResponseWrapper "成功响应，包含帖子列表和总记录数"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts [get]
func (ctrl *PostController) ListPosts(c *gin.Context) {
	var reqDTO dto.ListPostsRequest
	if err := c.ShouldBindQuery(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	listVO, err := ctrl.postService.ListPosts(c.Request.Context(), &reqDTO)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, listVO, "帖子列表获取成功")
}

// GetPostDetail 获取帖子详情
// @Summary      获取帖子详情 (公开)
// @Description  获取单个帖子的详细信息，每次成功获取会使浏览量加一，返回递增后的浏览量。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID" format(uint64) minimum(1)
// @Success      200 {object} vo.PostResponseWrapper "成功响应，包含帖子详情"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的路径参数"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/{post_id} [get]
func (ctrl *PostController) GetPostDetail(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	postVO, err := ctrl.postService.GetPostDetail(c.Request.Context(), postID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, postVO, "帖子详情获取成功")
}

// UpdatePost 更新帖子
// @Summary      更新帖子
// @Description  更新帖子的标题、正文与附件，仅作者本人可操作。最终附件 = old_file_paths 保留的旧附件 + new_files 新上传附件。
// @Tags         posts (帖子)
// @Accept       multipart/form-data
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID" format(uint64) minimum(1)
// @Param        title formData string false "帖子标题 (最大长度 255)"
// @Param        content formData string false "帖子正文"
// @Param        old_file_paths formData []string false "保留的旧附件 URL 列表" collectionFormat(multi)
// @Param        new_files formData file false "新附件文件，可多个"
// @Success      200 {object} vo.PostResponseWrapper "成功响应，包含更新后的帖子"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求参数"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权或认证失败"
// @Failure      403 {object} vo.BaseResponseWrapper "非帖子作者"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      502 {object} vo.BaseResponseWrapper "附件上传失败"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/{post_id} [put]
func (ctrl *PostController) UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	var reqDTO dto.UpdatePostRequest
	if err := c.ShouldBind(&reqDTO); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求参数: "+err.Error())
		return
	}

	newFiles, err := readMultipartFiles(c, "new_files")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "读取上传文件失败: "+err.Error())
		return
	}

	postVO, err := ctrl.postService.UpdatePost(c.Request.Context(), userID, postID, &reqDTO, newFiles)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, postVO, "帖子更新成功")
}

// DeletePost 删除帖子
// @Summary      删除帖子
// @Description  物理删除帖子及其全部评论，作者本人或管理员可操作。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID" format(uint64) minimum(1)
// @Success      200 {object} vo.BaseResponseWrapper "删除成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的路径参数"
// @Failure      401 {object} vo.BaseResponseWrapper "用户未授权或认证失败"
// @Failure      403 {object} vo.BaseResponseWrapper "非作者且非管理员"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/forum/posts/{post_id} [delete]
func (ctrl *PostController) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		return
	}

	if err := ctrl.postService.DeletePost(c.Request.Context(), userID, postID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "帖子删除成功")
}

// RegisterRoutes 注册帖子相关路由
func (ctrl *PostController) RegisterRoutes(group *gin.RouterGroup) {
	posts := group.Group("/posts")
	{
		posts.POST("", ctrl.CreatePost)             // POST /api/v1/forum/posts
		posts.GET("", ctrl.ListPosts)               // GET /api/v1/forum/posts
		posts.GET("/:post_id", ctrl.GetPostDetail)  // GET /api/v1/forum/posts/:post_id
		posts.PUT("/:post_id", ctrl.UpdatePost)     // PUT /api/v1/forum/posts/:post_id
		posts.DELETE("/:post_id", ctrl.DeletePost)  // DELETE /api/v1/forum/posts/:post_id
	}
}
