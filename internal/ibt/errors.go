package ibt

import (
	"errors"
	"fmt"

	"github.com/racetelem/ibtstream/internal/apierr"
)

var errTruncated = errors.New("region runs past end of file")

func malformedf(op, format string, args ...any) error {
	return apierr.New(apierr.KindMalformedInput, op, fmt.Errorf(format, args...))
}

func unsupportedf(op, format string, args ...any) error {
	return apierr.New(apierr.KindUnsupported, op, fmt.Errorf(format, args...))
}

func outOfRangef(op, format string, args ...any) error {
	return apierr.New(apierr.KindOutOfRange, op, fmt.Errorf(format, args...))
}

func truncated(op string) error {
	return apierr.New(apierr.KindMalformedInput, op, errTruncated)
}
