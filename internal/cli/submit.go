package cli

import (
	"context"
	"errors"
	"io"

	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/form"
)

// RunSubmit performs one submission of the session's current values, prints
// the outcome and returns the process exit code. Results go to out; field
// errors, failures and the spinner go to errOut.
func RunSubmit(ctx context.Context, session *form.Session, out, errOut io.Writer, cfg OutputConfig) int {
	reqCtx, input, err := session.Begin(ctx)
	switch {
	case errors.Is(err, form.ErrValidation):
		DisplayFieldErrors(errOut, session.Snapshot().FieldErrors)
		return apperrors.ExitErrorValidation
	case err != nil:
		DisplayError(errOut, err.Error())
		return apperrors.ExitErrorGeneric
	}

	stop := func() {}
	if !cfg.Quiet {
		stop = startSpinner(errOut, " Calculating LCM...")
	}
	res, callErr := session.Request(reqCtx, input)
	stop()
	outcome := session.Complete(res, callErr)

	snap := session.Snapshot()
	switch outcome {
	case form.OutcomeSuccess:
		if err := DisplayResultWithConfig(out, *snap.Result, cfg); err != nil {
			DisplayError(errOut, err.Error())
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess

	case form.OutcomeEndpointError:
		DisplayError(errOut, snap.ErrorMessage)
		return apperrors.ExitErrorEndpoint

	case form.OutcomeTransportError:
		if ctx.Err() != nil && apperrors.IsContextError(callErr) {
			return apperrors.ExitErrorCanceled
		}
		DisplayError(errOut, snap.ErrorMessage)
		return transportExitCode(callErr)

	default:
		return apperrors.ExitErrorGeneric
	}
}

// transportExitCode distinguishes an endpoint that did not answer in time
// from one that could not be reached or answered unreadably.
func transportExitCode(err error) int {
	if code := apperrors.ExitCodeFor(err); code == apperrors.ExitErrorTimeout {
		return code
	}
	return apperrors.ExitErrorTransport
}
