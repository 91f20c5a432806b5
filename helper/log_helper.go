package helper

import (
	"backoffice/config"
	"fmt"
	"time"
)

// ChannelHelpers scopes the per-channel JSON loggers to one component.
type ChannelHelpers struct {
	Channel string
}

func NewChannelHelpers(channel string) *ChannelHelpers {
	return &ChannelHelpers{
		Channel: channel,
	}
}

// LogAPICall logs an outbound gateway call. Form secrets must be stripped by
// the caller before passing requestData.
func (ch *ChannelHelpers) LogAPICall(endpoint, method string, duration time.Duration, statusCode int, requestData, responseData map[string]interface{}) {
	data := map[string]interface{}{}

	if requestData != nil {
		data["request"] = requestData
	}

	if responseData != nil {
		data["response"] = responseData
	}

	config.LogPaymentAPI(ch.Channel, endpoint, method, duration, statusCode, data)
}

func (ch *ChannelHelpers) LogTransactionError(orderID, customerID, amount, errorMsg string, data map[string]interface{}) {
	entry := config.LogEntry{
		OrderID:    orderID,
		CustomerID: customerID,
		Amount:     amount,
		Status:     "error",
		Error:      errorMsg,
		Data:       data,
	}
	config.LogError(ch.Channel, "Collection failed", entry)
}

func (ch *ChannelHelpers) LogTransactionSuccess(orderID, customerID, amount string, data map[string]interface{}) {
	entry := config.LogEntry{
		OrderID:    orderID,
		CustomerID: customerID,
		Amount:     amount,
		Status:     "waiting",
		Data:       data,
	}
	config.LogInfo(ch.Channel, "Collection submitted", entry)
}

// LogWithData writes message at any level with free-form data attached.
func (ch *ChannelHelpers) LogWithData(level, message string, data map[string]interface{}) {
	config.LogManager.LogPayment(ch.Channel, level, message, config.LogEntry{Data: data})
}

// LogRetry logs a retry of a failed gateway call.
func (ch *ChannelHelpers) LogRetry(reference string, attempt int, maxAttempts int, lastError string, data map[string]interface{}) {
	logData := map[string]interface{}{
		"attempt":      attempt,
		"max_attempts": maxAttempts,
		"last_error":   lastError,
	}

	for k, v := range data {
		logData[k] = v
	}

	entry := config.LogEntry{
		OrderID: reference,
		Error:   lastError,
		Data:    logData,
	}

	level := "WARN"
	message := fmt.Sprintf("Retry attempt %d/%d", attempt, maxAttempts)

	if attempt >= maxAttempts {
		level = "ERROR"
		message = "Max retry attempts reached"
	}

	config.LogManager.LogPayment(ch.Channel, level, message, entry)
}

var (
	PaytrLogger     = NewChannelHelpers(config.CHANNEL_PAYTR)
	CollectLogger   = NewChannelHelpers(config.CHANNEL_COLLECT)
	SchedulerLogger = NewChannelHelpers(config.CHANNEL_SCHEDULER)
)
