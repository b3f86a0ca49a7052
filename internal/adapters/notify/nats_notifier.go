package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// DefaultSubject is the chat-bridge subject the shop-floor bot listens on.
const DefaultSubject = "dispatch.non-inspection"

// nonInspectionMessage is the wire form of one non-inspection notice.
type nonInspectionMessage struct {
	RunDate            string `json:"run_date"`
	ShippingDate       string `json:"shipping_date"`
	ProductNumber      string `json:"product_number"`
	ProductionLotID    string `json:"production_lot_id,omitempty"`
	InstructionDate    string `json:"instruction_date,omitempty"`
	CurrentProcessName string `json:"current_process_name"`
}

// NATSNotifier publishes the non-inspection side list over NATS, one message
// per lot, rate limited so a large list does not flood the chat bridge.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	limiter *rate.Limiter
}

// NewNATSNotifier connects to the NATS server. The connection retries with
// backoff and survives broker restarts.
func NewNATSNotifier(url, subject string, perSecond float64) (*NATSNotifier, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	if perSecond <= 0 {
		perSecond = 5
	}
	return &NATSNotifier{
		conn:    conn,
		subject: subject,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}, nil
}

// PublishNonInspection sends one message per non-inspection lot. Publish
// failures are reported after the loop; a single bad message never blocks the
// rest of the list.
func (n *NATSNotifier) PublishNonInspection(ctx context.Context, runDate time.Time, lots []inspection.NonInspectionLot) error {
	logger := common.LoggerFromContext(ctx)

	var failed int
	for _, lot := range lots {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
		msg := nonInspectionMessage{
			RunDate:            runDate.Format("2006-01-02"),
			ShippingDate:       lot.ShippingDate.String(),
			ProductNumber:      lot.ProductNumber,
			ProductionLotID:    lot.ProductionLotID,
			CurrentProcessName: lot.CurrentProcessName,
		}
		if !lot.InstructionDate.IsZero() {
			msg.InstructionDate = lot.InstructionDate.Format("2006-01-02")
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encoding non-inspection message: %w", err)
		}
		if err := n.conn.Publish(n.subject, data); err != nil {
			failed++
			logger.Log("WARN", fmt.Sprintf("Failed to publish non-inspection lot: %v", err), map[string]interface{}{
				"product": lot.ProductNumber,
			})
		}
	}
	if failed > 0 {
		return fmt.Errorf("publishing non-inspection list: %d of %d messages failed", failed, len(lots))
	}
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Drain()
	}
}

var _ inspection.Notifier = (*NATSNotifier)(nil)
