package scheduleservice

import (
	"context"

	"github.com/Black-And-White-Club/marathon-manager/app/shared/results"
	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSize = 256

// ScheduleQRCode renders the event's public schedule link as a PNG QR code.
func (s *ScheduleService) ScheduleQRCode(ctx context.Context, eventID string, size int) ([]byte, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultQRCodeSize
	}
	result, err := withTelemetry(s, ctx, "ScheduleQRCode", eventID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		if event.ScheduleLink == "" {
			return results.FailureResult[[]byte, error](ErrNoScheduleLink), nil
		}
		png, err := s.qr(event.ScheduleLink, qrcode.Medium, size)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](png), nil
	})
	return unwrap(result, err)
}
