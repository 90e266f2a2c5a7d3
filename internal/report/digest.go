package report

import (
	"fmt"

	"moonwatch/internal/gateway/notifier"
)

// Digest is the uncolored summary pushed to chat.
func Digest(r *Report) notifier.StructuredMessage {
	s := r.Summary
	msg := notifier.StructuredMessage{
		Icon:  "📌",
		Title: "Open Positions Snapshot",
		Sections: []notifier.MessageSection{{
			Lines: []string{
				fmt.Sprintf("💰 Wallet Balance: %s", Money(s.WalletBalance)),
				fmt.Sprintf("💼 Available Balance: %s", Money(s.AvailableBalance)),
				fmt.Sprintf("📊 Unrealized PnL: %+.2f (%s)", s.UnrealizedPnL, Percent(s.UnrealizedPct)),
				fmt.Sprintf("🧾 Wallet + PnL: %s", Money(s.TotalEquity)),
				fmt.Sprintf("⚠️ SL Risk: %s", Money(s.TotalStopRiskUSD)),
			},
		}},
	}
	if r.Snapshot != nil {
		msg.Timestamp = r.Snapshot.TakenAt
	}
	return msg
}
