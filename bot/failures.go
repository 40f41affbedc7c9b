package bot

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"travel-bot/config"
	"travel-bot/services"
	"travel-bot/store"
)

// GenericFailureMessage is sent when no rule matches.
const GenericFailureMessage = "抱歉，我目前無法處理您的請求，請稍後再試。"

// PostbackFailureMessage answers every failed rich menu action.
const PostbackFailureMessage = "抱歉，處理您的請求時發生錯誤，請稍後再試。"

// failure is what the rules look at.
type failure struct {
	err    error
	code   string
	status int
	text   string
}

func newFailure(err error) failure {
	f := failure{err: err, text: strings.ToLower(err.Error())}
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		f.code = apiErr.Code
		f.status = apiErr.StatusCode
	}
	return f
}

func (f failure) mentions(words ...string) bool {
	for _, w := range words {
		if strings.Contains(f.text, w) {
			return true
		}
	}
	return false
}

func (f failure) statusIn(codes ...int) bool {
	for _, c := range codes {
		if f.status == c {
			return true
		}
	}
	return false
}

// failureRule maps a class of errors to the message the user sees.
type failureRule struct {
	Name    string
	Match   func(failure) bool
	Message string
}

// failureRules are evaluated in order; the first match wins.
var failureRules = []failureRule{
	{
		Name: "quota",
		Match: func(f failure) bool {
			return f.code == "insufficient_quota" || f.mentions("quota", "billing", "exceeded your current quota")
		},
		Message: "抱歉，服務配額已用盡。請前往 OpenAI 平台檢查帳號餘額，或聯繫管理員。",
	},
	{
		Name: "auth",
		Match: func(f failure) bool {
			return f.code == "invalid_api_key" || f.statusIn(401, 403) || f.mentions("api key", "authentication", "invalid")
		},
		Message: "抱歉，服務認證出現問題，請檢查 API Key 是否正確設定。",
	},
	{
		Name: "rate_limit",
		Match: func(f failure) bool {
			return f.statusIn(429) || f.mentions("rate limit")
		},
		Message: "抱歉，服務目前使用量較大，請稍候片刻後再試。",
	},
	{
		Name: "upstream",
		Match: func(f failure) bool {
			return f.statusIn(500, 502, 503, 504)
		},
		Message: "抱歉，OpenAI 服務暫時無法使用，請稍後再試。",
	},
	{
		Name: "network",
		Match: func(f failure) bool {
			return isNetworkError(f.err) || f.mentions("network", "timeout", "connection", "econnrefused", "etimedout")
		},
		Message: "抱歉，網路連接出現問題，請檢查網路連線後再試。",
	},
	{
		Name: "storage",
		Match: func(f failure) bool {
			return errors.Is(f.err, store.ErrStorage) || f.mentions("database_url", "postgres", "pq:")
		},
		Message: "抱歉，資料庫服務暫時無法使用，請稍後再試。",
	},
	{
		Name: "config",
		Match: func(f failure) bool {
			return errors.Is(f.err, config.ErrMissing) || f.mentions("openai_api_key", "環境變數", "environment variable")
		},
		Message: "抱歉，服務設定有誤，請檢查 .env 檔案中的 OPENAI_API_KEY 是否正確設定。",
	},
}

// ClassifyFailure returns the matching rule name and user-facing message.
func ClassifyFailure(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	f := newFailure(err)
	for _, rule := range failureRules {
		if rule.Match(f) {
			return rule.Name, rule.Message
		}
	}
	return "generic", GenericFailureMessage
}

func isNetworkError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ETIMEDOUT) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
