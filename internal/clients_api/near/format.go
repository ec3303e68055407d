package near

// Display formatting for NEAR amounts and block timestamps.

import (
	"math/big"
	"strconv"
	"time"

	"near-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// yoctoPerNEAR is the conversion factor: 1 NEAR = 10^24 yoctoNEAR.
var yoctoPerNEAR = new(big.Float).SetFloat64(1e24)

const timestampLayout = "2006-01-02 15:04:05 MST"

// FormatNEAR renders a yoctoNEAR amount as "X.XXXX NEAR".
func FormatNEAR(yocto *big.Int) string {
	if yocto == nil {
		return "Unknown"
	}
	near := new(big.Float).Quo(new(big.Float).SetInt(yocto), yoctoPerNEAR)
	return near.Text('f', 4) + " NEAR"
}

// NowTimestamp returns the current local time for display.
func NowTimestamp() string {
	return time.Now().Format(timestampLayout)
}

// FormatBlockTimestamp converts a nanosecond block timestamp string into a
// local, human-readable time.
func FormatBlockTimestamp(ns string) string {
	n, err := strconv.ParseUint(ns, 10, 64)
	if err != nil {
		log.LogWarn("Failed to parse block timestamp",
			zap.String("timestamp", ns), zap.Error(err))
		return "Invalid Timestamp"
	}
	secs := int64(n / 1_000_000_000)
	nsecs := int64(n % 1_000_000_000)
	return time.Unix(secs, nsecs).Local().Format(timestampLayout)
}
