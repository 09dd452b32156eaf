package controller

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/constants"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/forum_service/dependencies"
	"github.com/Xushengqwer/forum_service/myErrors"
)

// currentUserID 从请求上下文中取出网关透传的用户 ID。
// 取不到或不是合法数字时已向客户端写出 401 响应，调用方直接 return 即可。
func currentUserID(c *gin.Context) (uint64, bool) {
	userIDValue, exists := c.Get(string(constants.UserIDKey))
	if !exists {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "无法获取用户信息")
		return 0, false
	}

	userIDStr, ok := userIDValue.(string)
	if !ok || userIDStr == "" {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "无法获取有效的用户 ID")
		return 0, false
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "用户 ID 格式非法")
		return 0, false
	}
	return userID, true
}

// parseIDParam 解析路径参数中的数字 ID。
// 解析失败时已向客户端写出 400 响应，调用方直接 return 即可。
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的路径参数: "+name)
		return 0, false
	}
	return id, true
}

// readMultipartFiles 将 multipart 表单中指定字段的文件全部读入内存。
func readMultipartFiles(c *gin.Context, field string) ([]dependencies.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, err
	}

	headers := form.File[field]
	files := make([]dependencies.UploadFile, 0, len(headers))
	for _, header := range headers {
		data, contentType, err := readFileHeader(header)
		if err != nil {
			return nil, err
		}
		files = append(files, dependencies.UploadFile{
			Name:        header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return files, nil
}

// readFileHeader 读出单个上传文件的内容与类型。
func readFileHeader(header *multipart.FileHeader) ([]byte, string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// respondServiceError 将服务层错误映射为统一的 HTTP 响应。
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, myErrors.ErrPostNotFound),
		errors.Is(err, myErrors.ErrCommentNotFound),
		errors.Is(err, myErrors.ErrParentCommentNotFound),
		errors.Is(err, myErrors.ErrUserNotFound):
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, err.Error())
	case errors.Is(err, myErrors.ErrForbidden):
		response.RespondError(c, http.StatusForbidden, response.ErrCodeClientUnauthorized, err.Error())
	case errors.Is(err, myErrors.ErrInvalidParentComment),
		errors.Is(err, myErrors.ErrCommentNotBelongToPost):
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, err.Error())
	case errors.Is(err, myErrors.ErrCommentAlreadyDeleted),
		errors.Is(err, myErrors.ErrCannotUpdateDeletedComment):
		response.RespondError(c, http.StatusConflict, response.ErrCodeClientInvalidInput, err.Error())
	case errors.Is(err, myErrors.ErrFileUploadFailed):
		response.RespondError(c, http.StatusBadGateway, response.ErrCodeServerInternal, err.Error())
	default:
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "服务器内部错误")
	}
}
