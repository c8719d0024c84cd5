package handler

import "net/http"

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty responds 204 No Content.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

// EmptyWithStatus responds with status and no body.
func EmptyWithStatus(status int) Response {
	return emptyResponse{status: status}
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error hands err to the ErrorHandler configured in Wrap without writing
// anything itself.
//
//	res, err := svc.ProcessUpgrade(ctx, intent)
//	if err != nil {
//		return handler.Error(err)
//	}
func Error(err error) Response {
	if err == nil {
		err = ErrInternal
	}
	return errorResponse{err: err}
}
