package dependencies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/forum_service/config"
	"github.com/Xushengqwer/forum_service/metrics"
	"github.com/Xushengqwer/forum_service/myErrors"
)

// UploadFile 描述一个待上传的文件（内容已读入内存）
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadClientInterface 定义了文件上传网关客户端需要实现的方法
type UploadClientInterface interface {
	// Upload 将一批文件以 multipart/form-data 提交给上传网关，
	// 返回与入参等长且顺序一致的公开访问 URL 列表。
	// 空输入直接返回空切片，不会发起任何网络请求。
	Upload(ctx context.Context, files []UploadFile) ([]string, error)
}

type uploadClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *core.ZapLogger
}

// uploadResponse 是上传网关约定的响应体
type uploadResponse struct {
	URLs []string `json:"urls"`
}

// quoteEscaper 转义文件名中的引号和反斜杠，与 mime/multipart 内部的处理一致
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// InitUploadClient 初始化上传网关客户端
func InitUploadClient(cfg *appConfig.UploadConfig, logger *core.ZapLogger) (UploadClientInterface, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("上传网关配置不完整，缺少 endpoint")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	logger.Info("上传网关客户端初始化成功",
		zap.String("endpoint", cfg.Endpoint),
		zap.Duration("timeout", timeout),
	)

	return &uploadClient{
		endpoint:   cfg.Endpoint,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Upload 将文件批量上传到网关，任一失败则整体失败
func (u *uploadClient) Upload(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		// 手工构建 part 头，带上每个文件自己的 Content-Type，
		// CreateFormFile 会把所有 part 固定成 application/octet-stream。
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			u.logger.Error("构建 multipart 表单失败", zap.String("fileName", f.Name), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", myErrors.ErrFileUploadFailed, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			u.logger.Error("写入 multipart 文件内容失败", zap.String("fileName", f.Name), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", myErrors.ErrFileUploadFailed, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", myErrors.ErrFileUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", myErrors.ErrFileUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		metrics.UploadFailures.Inc()
		u.logger.Error("请求上传网关失败", zap.String("endpoint", u.endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", myErrors.ErrFileUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UploadFailures.Inc()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		u.logger.Error("上传网关返回非成功状态码",
			zap.Int("statusCode", resp.StatusCode),
			zap.ByteString("responseBody", respBody),
		)
		return nil, fmt.Errorf("%w: 网关状态码 %d", myErrors.ErrFileUploadFailed, resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.UploadFailures.Inc()
		u.logger.Error("解析上传网关响应失败", zap.Error(err))
		return nil, fmt.Errorf("%w: 响应解析失败: %v", myErrors.ErrFileUploadFailed, err)
	}

	if len(result.URLs) != len(files) {
		metrics.UploadFailures.Inc()
		u.logger.Error("上传网关返回的 URL 数量与文件数量不一致",
			zap.Int("expected", len(files)),
			zap.Int("actual", len(result.URLs)),
		)
		return nil, fmt.Errorf("%w: 返回 URL 数量不匹配", myErrors.ErrFileUploadFailed)
	}

	u.logger.Info("文件批量上传成功", zap.Int("count", len(files)))
	return result.URLs, nil
}
