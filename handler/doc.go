// Package handler turns typed request handlers into http.HandlerFuncs.
//
// A HandlerFunc receives a Context and a request value that was filled by the
// configured binders, and returns a Response. Errors from binding, from the
// handler (via Error) or from rendering all flow to one ErrorHandler, which
// classifies them into a status code and a user-safe JSON body:
//
//	type loginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	func login(ctx handler.Context, req loginRequest) handler.Response {
//		res, err := svc.Login(ctx, req.Email, req.Password)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(res)
//	}
//
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinder[handler.Context, loginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, loginRequest](errHandler),
//	))
//
// NewErrorHandler understands HTTPError, validator.ValidationErrors and binder
// errors on its own; domain packages plug their taxonomy in with a Classifier.
// Server-side failures are logged with the request ID and answered with a
// generic message only.
package handler
