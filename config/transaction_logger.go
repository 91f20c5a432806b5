package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogEntry is one JSON line in a per-gateway log file.
type LogEntry struct {
	Level       string                 `json:"level"`
	Message     string                 `json:"message"`
	Timestamp   string                 `json:"timestamp"`
	Channel     string                 `json:"channel"`
	OrderID     string                 `json:"order_id,omitempty"`
	CustomerID  string                 `json:"customer_id,omitempty"`
	CompanyID   string                 `json:"company_id,omitempty"`
	Amount      string                 `json:"amount,omitempty"`
	Status      string                 `json:"status,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Duration    float64                `json:"duration_ms,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// ChannelLogger owns one log file and the goroutine draining its queue.
type ChannelLogger struct {
	channel  string
	logger   *log.Logger
	logFile  *os.File
	logChan  chan LogEntry
	stopChan chan bool
	wg       sync.WaitGroup
}

type LoggerManager struct {
	loggers map[string]*ChannelLogger
	mu      sync.RWMutex
}

var (
	LogManager *LoggerManager
)

const (
	CHANNEL_PAYTR     = "paytr"
	CHANNEL_COLLECT   = "collect"
	CHANNEL_SCHEDULER = "scheduler"
)

// InitPaymentLoggers opens a log file per channel under LogsBaseDir()/payments.
func InitPaymentLoggers() error {
	LogManager = &LoggerManager{
		loggers: make(map[string]*ChannelLogger),
	}

	for _, channel := range []string{CHANNEL_PAYTR, CHANNEL_COLLECT, CHANNEL_SCHEDULER} {
		if err := LogManager.CreateLogger(channel); err != nil {
			return fmt.Errorf("failed to create logger for %s: %w", channel, err)
		}
	}

	return nil
}

func (plm *LoggerManager) CreateLogger(channel string) error {
	plm.mu.Lock()
	defer plm.mu.Unlock()

	logDir := filepath.Join(LogsBaseDir(), "payments")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	currentTime := time.Now()
	year, month, _ := currentTime.Date()
	_, week := currentTime.ISOWeek()

	logFileName := fmt.Sprintf("backoffice-%d-%02d-week%d-%s.log", year, month, week, channel)
	logFile, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	cl := &ChannelLogger{
		channel:  channel,
		logger:   log.New(logFile, "", 0),
		logFile:  logFile,
		logChan:  make(chan LogEntry, 1000),
		stopChan: make(chan bool),
	}

	cl.wg.Add(1)
	go cl.worker()

	plm.loggers[channel] = cl
	return nil
}

func (cl *ChannelLogger) worker() {
	defer cl.wg.Done()

	for {
		select {
		case entry := <-cl.logChan:
			cl.writeLog(entry)
		case <-cl.stopChan:
			for len(cl.logChan) > 0 {
				entry := <-cl.logChan
				cl.writeLog(entry)
			}
			return
		}
	}
}

func (cl *ChannelLogger) writeLog(entry LogEntry) {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Error marshaling log entry for %s: %v", cl.channel, err)
		return
	}

	cl.logger.Println(string(jsonData))
	cl.logFile.Sync()
}

// LogPayment queues entry without blocking. Before InitPaymentLoggers runs
// (tests, CLI tools) entries fall through to the process log.
func (plm *LoggerManager) LogPayment(channel, level, message string, entry LogEntry) {
	entry.Level = level
	entry.Message = message
	entry.Channel = channel
	entry.Timestamp = time.Now().Format(time.RFC3339)

	if plm == nil {
		LogWithLevel(level, "%s: %s order=%s error=%s", channel, message, entry.OrderID, entry.Error)
		return
	}

	plm.mu.RLock()
	logger, exists := plm.loggers[channel]
	plm.mu.RUnlock()

	if !exists {
		log.Printf("WARN: logger for channel %s not found", channel)
		return
	}

	select {
	case logger.logChan <- entry:
	default:
		LogWithLevel("ERROR", "Log channel full for %s", channel)
	}
}

func LogInfo(channel, message string, entry LogEntry) {
	LogManager.LogPayment(channel, "INFO", message, entry)
}

func LogError(channel, message string, entry LogEntry) {
	LogManager.LogPayment(channel, "ERROR", message, entry)
}

func LogPaymentAPI(channel, endpoint, method string, duration time.Duration, statusCode int, data map[string]interface{}) {
	entry := LogEntry{
		Duration: float64(duration.Nanoseconds()) / 1e6,
		Data: map[string]interface{}{
			"endpoint":    endpoint,
			"method":      method,
			"status_code": statusCode,
		},
	}
	for k, v := range data {
		entry.Data[k] = v
	}

	// 2xx calls are routine; keep them out of the file unless debugging
	if statusCode == 0 || statusCode >= 300 {
		LogManager.LogPayment(channel, "ERROR", "API call failed", entry)
	} else if ConfigBool("LOG_GATEWAY_SUCCESS", false) {
		LogManager.LogPayment(channel, "INFO", "API call", entry)
	}
}

func ShutdownPaymentLoggers() {
	if LogManager == nil {
		return
	}

	LogManager.mu.Lock()
	defer LogManager.mu.Unlock()

	for _, logger := range LogManager.loggers {
		close(logger.stopChan)
		logger.wg.Wait()
		logger.logFile.Close()
	}

	LogWithLevel("INFO", "Payment loggers shutdown completed")
}
