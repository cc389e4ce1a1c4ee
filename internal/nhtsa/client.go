// Package nhtsa 调用 NHTSA vPIC DecodeVin 接口解码 VIN。
package nhtsa

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vinaudit/internal/model"
	"vinaudit/pkg/logger"
)

var (
	// ErrBatchTimeout 单次查询超时，整批中止
	ErrBatchTimeout = errors.New("vin lookup timed out")
	// ErrLookupUnavailable 登记库不可达（连接失败等），整批中止
	ErrLookupUnavailable = errors.New("vin lookup service unavailable")
)

// 登记库响应中使用的变量名
const (
	VariableModelYear   = "Model Year"
	VariableMake        = "Make"
	VariableModel       = "Model"
	VariableFuelPrimary = "Fuel Type - Primary"
	VariableVehicleType = "Vehicle Type"
	VariableErrorText   = "Error Text"
)

// Lookup 解码单个已修正的 VIN
//
// 响应无法解析时返回 model.DecodeFailure() 且 error 为 nil；
// 返回 error 表示整批必须中止。
type Lookup interface {
	Decode(ctx context.Context, vin string) (model.DecodeResult, error)
}

// LookupFunc 函数适配 Lookup
type LookupFunc func(ctx context.Context, vin string) (model.DecodeResult, error)

// Decode 实现 Lookup
func (f LookupFunc) Decode(ctx context.Context, vin string) (model.DecodeResult, error) {
	return f(ctx, vin)
}

// Options 客户端选项
type Options struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	UserAgent          string
}

// Client vPIC HTTP 客户端（无缓存、无重试）
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logger.Logger
}

// NewClient 创建客户端
func NewClient(opts Options, log *logger.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		logger:    log.Named("nhtsa"),
	}
}

// decodeResponse DecodeVin 响应结构
type decodeResponse struct {
	Count          int        `json:"Count"`
	Message        string     `json:"Message"`
	SearchCriteria string     `json:"SearchCriteria"`
	Results        []variable `json:"Results"`
}

type variable struct {
	Variable string  `json:"Variable"`
	Value    *string `json:"Value"`
}

// Decode 查询单个 VIN
func (c *Client) Decode(ctx context.Context, vin string) (model.DecodeResult, error) {
	endpoint := fmt.Sprintf("%s/DecodeVin/%s?format=json", c.baseURL, url.PathEscape(vin))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.DecodeResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("lookup timed out", logger.String("vin", vin), logger.Duration("elapsed", time.Since(started)))
			return model.DecodeResult{}, ErrBatchTimeout
		}
		if errors.Is(err, context.Canceled) {
			return model.DecodeResult{}, err
		}
		c.logger.Error("lookup failed", logger.String("vin", vin), logger.Error(err))
		return model.DecodeResult{}, fmt.Errorf("%w: %v", ErrLookupUnavailable, withoutURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read decode response", logger.String("vin", vin), logger.Error(err))
		if isTimeout(err) {
			return model.DecodeResult{}, ErrBatchTimeout
		}
		return model.DecodeResult{}, fmt.Errorf("%w: read body: %v", ErrLookupUnavailable, withoutURL(err))
	}

	result, ok := ParseDecodeResponse(body)
	if !ok {
		c.logger.Warn("unparseable decode response",
			logger.String("vin", vin),
			logger.Int("status_code", resp.StatusCode),
		)
		return model.DecodeFailure(), nil
	}

	c.logger.Debug("decoded vin",
		logger.String("vin", vin),
		logger.String("make", result.Make),
		logger.String("model", result.Model),
		logger.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// ParseDecodeResponse 解析 DecodeVin JSON；无法解析或缺少 Results 时返回 false
func ParseDecodeResponse(body []byte) (model.DecodeResult, bool) {
	var data decodeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return model.DecodeResult{}, false
	}
	if data.Results == nil {
		return model.DecodeResult{}, false
	}

	values := make(map[string]string, len(data.Results))
	for _, item := range data.Results {
		if item.Value == nil {
			values[item.Variable] = ""
			continue
		}
		values[item.Variable] = strings.TrimSpace(*item.Value)
	}

	get := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return model.ValueNotAvailable
	}

	return model.DecodeResult{
		Year:        get(VariableModelYear),
		Make:        get(VariableMake),
		Model:       get(VariableModel),
		Fuel:        get(VariableFuelPrimary),
		VehicleType: get(VariableVehicleType),
		ErrorText:   get(VariableErrorText),
	}, true
}

// withoutURL 去掉 *url.Error 中带 VIN 的请求地址
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
