package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/chatpp/relay/common"
	"github.com/chatpp/relay/common/client"
	"github.com/chatpp/relay/common/ctxkey"
	"github.com/chatpp/relay/model"
	"github.com/chatpp/relay/monitor"
	"github.com/chatpp/relay/relay"
	"github.com/chatpp/relay/relay/adaptor"
	"github.com/chatpp/relay/relay/meta"
	relaymodel "github.com/chatpp/relay/relay/model"
	"github.com/chatpp/relay/relay/quota"
	"github.com/chatpp/relay/relay/streaming"
)

// RelayChat sequences one chat-completion request: quota decision, vendor
// dispatch, the exactly-once charge, and response translation. No upstream
// retries anywhere: the charge-before-stream-completion ordering makes naive
// retry unsafe, so a failed attempt is surfaced as-is.
func RelayChat(c *gin.Context, isStream bool) {
	lg := gmw.GetLogger(c)

	request := &relaymodel.ChatRequest{}
	if err := common.UnmarshalBodyReusable(c, request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "invalid request body"})
		return
	}
	if len(request.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "request has no messages"})
		return
	}

	modelName := c.Request.Header.Get("model")
	if modelName == "" {
		modelName = request.Model
	}
	if modelName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "model not specified"})
		return
	}
	c.Set(ctxkey.RequestModel, modelName)

	m := meta.GetByContext(c, modelName, isStream)
	a := relay.GetAdaptor(m.ChannelType)
	channelName := a.GetChannelName()

	// Charge plan is decided on a snapshot read immediately before dispatch,
	// not on the gate's earlier read-only check.
	var plan *model.ChargePlan
	if !m.BYOK && m.AccountId != "" {
		snapshot, err := model.Store.ReadSnapshot(c.Request.Context(), m.AccountId)
		if err != nil {
			lg.Error("failed to read entitlement snapshot", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
			return
		}
		decision := quota.Evaluate(snapshot, quota.IsPremiumModel(modelName))
		if !decision.Allow {
			monitor.RecordQuotaDenial()
			lg.Info("quota denied",
				zap.String("account", m.AccountId),
				zap.String("model", modelName),
				zap.String("reason", decision.Reason))
			// Generic message: denial must not reveal which counter ran out.
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "msg": "Auth failed"})
			return
		}
		plan = &decision.Plan
	}

	resp, ok := doUpstreamRequest(c, a, request, m, channelName)
	if !ok {
		return
	}
	defer resp.Body.Close()

	if isStream {
		relayStream(c, a, resp, m, plan, channelName)
		return
	}
	relayNonStream(c, a, resp, m, plan, channelName)
}

func doUpstreamRequest(c *gin.Context, a adaptor.Adaptor, request *relaymodel.ChatRequest, m *meta.Meta, channelName string) (*http.Response, bool) {
	lg := gmw.GetLogger(c)

	vendorRequest, err := a.ConvertRequest(request, m)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": err.Error()})
		return nil, false
	}
	body, err := json.Marshal(vendorRequest)
	if err != nil {
		lg.Error("failed to marshal vendor request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
		return nil, false
	}
	url, err := a.GetRequestURL(m)
	if err != nil {
		lg.Error("failed to build upstream URL", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
		return nil, false
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		lg.Error("failed to build upstream request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
		return nil, false
	}
	a.SetupRequestHeader(req, m)

	lg.Info("relaying chat completion",
		zap.String("channel", channelName),
		zap.String("model", m.ModelName),
		zap.Bool("stream", m.IsStream))

	httpClient := client.NonStreamHTTPClient
	if m.IsStream {
		httpClient = client.RelayHTTPClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		monitor.RecordRelayRequest(channelName, monitor.OutcomeUpstreamError)
		lg.Warn("upstream request failed", zap.Error(err))
		if m.IsStream {
			// Transport failures are retryable by the caller; inline payload
			// keeps the streaming surface uniform.
			c.String(http.StatusOK, fencedFetchError(RedactAPIKey(err.Error())))
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": true, "msg": RedactAPIKey(err.Error()), "retryable": true})
		}
		return nil, false
	}
	return resp, true
}

func relayStream(c *gin.Context, a adaptor.Adaptor, resp *http.Response, m *meta.Meta, plan *model.ChargePlan, channelName string) {
	lg := gmw.GetLogger(c)

	// The upstream declined to stream and returned an error body instead.
	// A non-200 status must be caught here too: Gemini's array wire format
	// reports errors as 4xx application/json, which passes the content-type
	// check but carries no candidates, so the transcoder would silently emit
	// nothing. Surface the body without invoking the transcoder, and without
	// charging.
	if resp.StatusCode != http.StatusOK || !a.IsStreamingContentType(resp) {
		content, err := io.ReadAll(resp.Body)
		if err != nil {
			content = []byte(err.Error())
		}
		monitor.RecordRelayRequest(channelName, monitor.OutcomeUpstreamError)
		lg.Warn("upstream declined to stream",
			zap.Int("status", resp.StatusCode),
			zap.String("content_type", resp.Header.Get("Content-Type")))
		c.String(http.StatusOK, fencedStreamError(RedactAPIKey(string(content))))
		return
	}

	// First successful byte observed: commit the charge exactly once. A later
	// failure or cancellation does not refund it.
	applyCharge(c, plan, m.ModelName)

	c.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	outcome := monitor.OutcomeOK
	transcoder := streaming.NewTranscoder(a, a.WireFormat(m))
	transcoder.Run(c.Request.Context(), resp.Body, func(event relaymodel.StreamEvent) {
		switch event.Type {
		case relaymodel.EventTextDelta:
			_, _ = c.Writer.WriteString(event.Text)
			c.Writer.Flush()
		case relaymodel.EventError:
			outcome = monitor.OutcomeStreamError
			lg.Warn("stream terminated with error",
				zap.String("channel", channelName),
				zap.String("error", event.Err),
				zap.Bool("retryable", event.Retryable))
			_, _ = c.Writer.WriteString("ERROR: " + event.Err)
			c.Writer.Flush()
		case relaymodel.EventDone:
		}
	})
	monitor.RecordRelayRequest(channelName, outcome)
}

func relayNonStream(c *gin.Context, a adaptor.Adaptor, resp *http.Response, m *meta.Meta, plan *model.ChargePlan, channelName string) {
	lg := gmw.GetLogger(c)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		monitor.RecordRelayRequest(channelName, monitor.OutcomeUpstreamError)
		lg.Warn("failed to read upstream response", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": true, "msg": RedactAPIKey(err.Error()), "retryable": true})
		return
	}

	message, err := a.ParseResponse(body)
	if err != nil || resp.StatusCode != http.StatusOK {
		monitor.RecordRelayRequest(channelName, monitor.OutcomeUpstreamError)
		lg.Warn("upstream returned an unusable response",
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		// Callers expect the canonical shape even on vendor failure.
		c.JSON(http.StatusOK, &relaymodel.ChatResponse{})
		return
	}

	applyCharge(c, plan, m.ModelName)
	monitor.RecordRelayRequest(channelName, monitor.OutcomeOK)
	c.JSON(http.StatusOK, message)
}

// applyCharge commits an accepted request's charge plan. It deliberately runs
// on a context detached from the request: once the upstream response is
// accepted, caller cancellation must not skip the accounting.
func applyCharge(c *gin.Context, plan *model.ChargePlan, modelName string) {
	if plan == nil {
		return
	}
	lg := gmw.GetLogger(c)
	ctx := context.WithoutCancel(c.Request.Context())
	previous, err := model.Store.ApplyCharge(ctx, *plan)
	if err != nil {
		// The request already went upstream; failing it now would double-bill
		// on retry. Log and move on.
		lg.Error("failed to apply charge",
			zap.String("account", plan.AccountId),
			zap.String("kind", string(plan.Kind)),
			zap.Error(err))
		return
	}
	model.RecordCharge(*plan, modelName, previous)
	monitor.RecordCharge(string(plan.Kind))
	lg.Info("charge applied",
		zap.String("account", plan.AccountId),
		zap.String("kind", string(plan.Kind)),
		zap.Int64("amount", plan.Amount),
		zap.Int64("previous_points", previous))
}
