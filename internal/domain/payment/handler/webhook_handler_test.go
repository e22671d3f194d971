package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"khanmall/internal/domain/payment/model"
	"khanmall/internal/domain/payment/service"
	"khanmall/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubReconciler struct {
	result service.Result
	err    error
}

func (s *stubReconciler) Reconcile(content, sender string) (service.Result, error) {
	return s.result, s.err
}

func setupRouter(svc service.ReconcileService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewWebhookHandler(svc, nil)
	r.POST("/webhook/payment-sms", h.ReceiveSMS)
	return r
}

func postSMS(r *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment-sms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReceiveSMS(t *testing.T) {
	t.Run("reconciled delivery answers 200", func(t *testing.T) {
		config.GlobalConfig.Webhook.Key = ""
		r := setupRouter(&stubReconciler{result: service.Result{
			Outcome:   model.ResultReconciled,
			Reference: "KM99990000",
		}})

		w := postSMS(r, `{"content":"transfer KM99990000 received","sender":"BANK"}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), model.ResultReconciled)
		assert.Contains(t, w.Body.String(), "KM99990000")
	})

	t.Run("unmatched delivery still answers 200", func(t *testing.T) {
		config.GlobalConfig.Webhook.Key = ""
		r := setupRouter(&stubReconciler{result: service.Result{Outcome: model.ResultNoMatch}})

		w := postSMS(r, `{"content":"unrelated text"}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), model.ResultNoMatch)
	})

	t.Run("replayed delivery still answers 200", func(t *testing.T) {
		config.GlobalConfig.Webhook.Key = ""
		r := setupRouter(&stubReconciler{result: service.Result{
			Outcome:   model.ResultAlreadySettled,
			Reference: "KM99990000",
		}})

		w := postSMS(r, `{"content":"transfer KM99990000 received"}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), model.ResultAlreadySettled)
	})

	t.Run("missing content is a bad request", func(t *testing.T) {
		config.GlobalConfig.Webhook.Key = ""
		r := setupRouter(&stubReconciler{})

		w := postSMS(r, `{"sender":"BANK"}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("configured key is enforced", func(t *testing.T) {
		config.GlobalConfig.Webhook.Key = "s3cret"
		defer func() { config.GlobalConfig.Webhook.Key = "" }()
		r := setupRouter(&stubReconciler{result: service.Result{Outcome: model.ResultNoMatch}})

		w := postSMS(r, `{"content":"x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = postSMS(r, `{"content":"x"}`, map[string]string{"X-Webhook-Key": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = postSMS(r, `{"content":"x"}`, map[string]string{"X-Webhook-Key": "s3cret"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
