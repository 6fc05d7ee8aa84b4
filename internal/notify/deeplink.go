package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://wa.me"

var ErrInvalidPhone = errors.New("notify: phone has no digits")

// DeepLinker builds composer links of the form {base}/{digits}?text={message}.
// The client opens the link; there is no delivery confirmation.
type DeepLinker struct {
	BaseURL     string
	CountryCode string
	Logger      *zap.Logger
}

func NewDeepLinker(baseURL, countryCode string, logger *zap.Logger) *DeepLinker {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeepLinker{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		CountryCode: countryCode,
		Logger:      logger.Named("notify"),
	}
}

func (d *DeepLinker) Notify(_ context.Context, phone, text string) (string, error) {
	digits := NormalizePhone(phone, d.CountryCode)
	if digits == "" {
		return "", ErrInvalidPhone
	}
	link := fmt.Sprintf("%s/%s?text=%s", d.BaseURL, digits, encodeComponent(text))
	d.Logger.Info("composer link built", zap.String("phone", digits), zap.Int("length", len(text)))
	return link, nil
}

// encodeComponent escapes text like a URI component: spaces become %20.
func encodeComponent(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
