package device

import (
	"fmt"

	"github/chapool/go-hwctl/internal/clierrors"
)

// Failure codes reported by the device.
const (
	FailureUnexpectedMessage = 1
	FailureButtonExpected    = 2
	FailureDataError         = 3
	FailureActionCancelled   = 4
	FailurePinExpected       = 5
	FailurePinCancelled      = 6
	FailurePinInvalid        = 7
	FailureInvalidSignature  = 8
	FailureProcessError      = 9
	FailureNotEnoughFunds    = 10
	FailureNotInitialized    = 11
	FailurePinMismatch       = 12
	FailureFirmwareError     = 99
)

// failureMessages maps device failure codes to user-facing messages. Built
// once, never mutated.
var failureMessages = map[int]string{
	FailureUnexpectedMessage: "device received an unexpected message",
	FailureButtonExpected:    "device expected a button press",
	FailureDataError:         "device rejected the request data",
	FailureActionCancelled:   "action cancelled on device",
	FailurePinExpected:       "device expected a PIN",
	FailurePinCancelled:      "PIN entry cancelled",
	FailurePinInvalid:        "invalid PIN",
	FailureInvalidSignature:  "device reported an invalid signature",
	FailureProcessError:      "device could not process the request",
	FailureNotEnoughFunds:    "not enough funds",
	FailureNotInitialized:    "device is not initialized",
	FailurePinMismatch:       "PIN entries did not match",
	FailureFirmwareError:     "firmware error",
}

// FailureMessage returns the user-facing message for a device failure code.
func FailureMessage(code int) string {
	if message, ok := failureMessages[code]; ok {
		return message
	}

	return "unknown device failure"
}

// CallFailure is a failure reported by the device for one call. It carries
// the device's own code and message and maps to the device error category.
type CallFailure struct {
	Code    int
	Message string
}

func (e *CallFailure) Error() string {
	message := e.Message
	if message == "" {
		message = FailureMessage(e.Code)
	}

	return fmt.Sprintf("device failure %d: %s", e.Code, message)
}

// AsCategorized wraps a call failure into the shared error taxonomy.
func (e *CallFailure) AsCategorized() *clierrors.Error {
	return clierrors.Wrap(clierrors.CategoryDevice, e, "%s", FailureMessage(e.Code))
}
