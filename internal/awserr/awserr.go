package awserr

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Describe добавляет к ошибке код и сообщение API AWS, если они есть.
func Describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s (%s): %w", apiErr.ErrorCode(), apiErr.ErrorFault(), err)
	}
	return err
}
