package http

// Handler processes a request by filling the response. A returned error is logged by the
// connection, which then answers with Response.Error and keeps serving.
type Handler interface {
	Handle(request *Request, response *Response) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(request *Request, response *Response) error

func (f HandlerFunc) Handle(request *Request, response *Response) error {
	return f(request, response)
}
