package cache

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
