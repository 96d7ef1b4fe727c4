package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	SelectFieldTypeErrMsg = "could not select field type"
	CreateFieldTypeErrMsg = "could not create field type"
	UpdateFieldTypeErrMsg = "could not update field type"
	DeleteFieldTypeErrMsg = "could not delete field type"
	FieldTypeNotFoundMsg  = "field type not found"
)

var (
	ErrFieldTypeSelect         = status.Error(codes.Internal, SelectFieldTypeErrMsg)
	ErrFieldTypeCreate         = status.Error(codes.Internal, CreateFieldTypeErrMsg)
	ErrFieldTypeUpdate         = status.Error(codes.Internal, UpdateFieldTypeErrMsg)
	ErrFieldTypeDelete         = status.Error(codes.Internal, DeleteFieldTypeErrMsg)
	ErrFieldTypeNotFound       = status.Error(codes.NotFound, FieldTypeNotFoundMsg)
	ErrFieldTypeAlreadyExists  = status.Error(codes.AlreadyExists, "field type with the given uuid or name already exists")
	ErrUUIDIsEmpty             = status.Error(codes.InvalidArgument, "uuid cannot be empty")
	ErrInvalidPageToken        = status.Error(codes.InvalidArgument, "page token is invalid")
	ErrRetireReasonIsEmpty     = status.Error(codes.InvalidArgument, "retire reason cannot be empty")
	ErrFieldTypeAlreadyRetired = status.Error(codes.FailedPrecondition, "field type is already retired")
	ErrFieldTypeNotRetired     = status.Error(codes.FailedPrecondition, "field type is not retired")
	ErrValidationConversion    = status.Error(codes.Internal, "could not read values for validation")
	ErrValidationLookup        = status.Error(codes.Internal, "could not run field type validation")
	ErrPanic                   = status.Error(codes.Internal, "an unexpected error occurred, please try again")
	ErrTranCtxTimeout          = status.Error(codes.Aborted, "transaction was aborted due to timeout, please try again")
)

// ErrorWithParams will return an error with new message,
// where params get appended at end of the error message.
// If the input is normal error then error is wrapped.
// If the input is a GRPC error it will create a new
// GRPC error.
// Note GRPC error returned cannot be used to check `errors.Is`.
func ErrorWithParams(err error, params ...any) error {
	var sb strings.Builder

	if len(params) == 0 {
		return err
	}

	for index, param := range params {
		if (index+1)%2 == 0 {
			sb.WriteString(fmt.Sprintf("=%v", param))
		} else {
			if index != 0 {
				sb.WriteString(" ")
			}

			sb.WriteString(fmt.Sprintf("%v", param))
		}
	}

	suffix := ""
	if sb.Len() > 0 {
		suffix = fmt.Sprintf(" (%s)", sb.String())
	}

	sts, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w%s", err, suffix)
	}

	return status.Error(sts.Code(), sts.Message()+suffix)
}

// mapError maps an error to a corresponding error.
// if err == context.DeadlineExceeded returns ErrTranCtxTimeout.
// else return input error.
func mapError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTranCtxTimeout
	default:
		return err
	}
}
