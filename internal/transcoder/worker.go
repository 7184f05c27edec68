package transcoder

import (
	"fmt"
	"log/slog"

	"woffsmith/internal/container"
	"woffsmith/internal/logging"
)

// Encoder is the conversion routine a worker runs.
type Encoder interface {
	Encode(source []byte, format container.Format) ([]byte, error)
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc func(source []byte, format container.Format) ([]byte, error)

func (f EncoderFunc) Encode(source []byte, format container.Format) ([]byte, error) {
	return f(source, format)
}

// handle converts one request into exactly one response.
func handle(enc Encoder, logger *slog.Logger, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "encoder panicked", "encoder_panic",
				logging.String(logging.FieldRequestID, req.ID),
				logging.String("file", req.FileName),
				logging.Any("panic", r),
				logging.String(logging.FieldErrorHint, "the source file is likely corrupt"),
			)
			resp = errorResponse(req, fmt.Errorf("encoder panic: %v", r))
		}
	}()

	if req.Kind != KindConvert {
		return errorResponse(req, fmt.Errorf("unsupported request kind %q", req.Kind))
	}
	data, err := enc.Encode(req.Source, req.Format)
	if err != nil {
		return errorResponse(req, err)
	}
	return successResponse(req, data)
}
