package helper

import (
	"backoffice/config"
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogWithDataForwardsEveryLevel(t *testing.T) {
	saved := config.LogManager
	config.LogManager = nil
	defer func() { config.LogManager = saved }()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	ch := NewChannelHelpers("collect")
	for _, level := range []string{"INFO", "WARN", "ERROR"} {
		buf.Reset()
		ch.LogWithData(level, "Card list refreshed", map[string]interface{}{"customer_id": "C1"})
		assert.Contains(t, buf.String(), "["+level+"] collect: Card list refreshed")
	}
}
