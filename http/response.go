package http

import (
	"errors"
	"io"
	"os"

	"github.com/indigo-web/h2tp/http/cookie"
	"github.com/indigo-web/h2tp/http/mime"
	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/kv"
	json "github.com/json-iterator/go"
)

// why 7? There's no theory behind this number. Most responses carry fewer headers.
const preallocRespHeaders = 7

// Response is a builder over a Message. Its start-line is rendered with the version of the
// request it answers.
type Response struct {
	Message
	code status.Code
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK.
func NewResponse() *Response {
	r := &Response{
		Message: newMessage(kv.NewPrealloc(preallocRespHeaders)),
	}

	return r.Code(status.OK)
}

// Code sets a Response code and a corresponding status.
// In case of unknown code, "Unknown Status Code" will be set as a status
// code. In this case you should call Status explicitly
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	r.StartLine[1] = status.StringCode(code)
	r.StartLine[2] = string(status.Text(code))
	return r
}

// Status sets a custom status text. This text does not matter at all, and usually
// totally ignored by client, so there is actually no reasons to use this except some
// rare cases when you need to represent a Response status text somewhere
func (r *Response) Status(status status.Status) *Response {
	r.StartLine[2] = string(status)
	return r
}

func (r *Response) StatusCode() status.Code {
	return r.code
}

func (r *Response) Reason() string {
	return r.StartLine[2]
}

// Cookie adds cookies. Each of them is rendered as a separate Set-Cookie header.
func (r *Response) Cookie(cookies ...cookie.Cookie) *Response {
	for _, c := range cookies {
		r.Headers.Add("Set-Cookie", cookie.Render(c))
	}

	return r
}

// ContentType sets a custom Content-Type header value.
func (r *Response) ContentType(value mime.MIME) *Response {
	return r.SetHeader("Content-Type", value)
}

// Header appends header values to a key. Existing values are kept.
func (r *Response) Header(key string, values ...string) *Response {
	for _, value := range values {
		r.Headers.Add(key, value)
	}

	return r
}

// SetHeader replaces all the values of the key.
func (r *Response) SetHeader(key, value string) *Response {
	r.Headers.Set(key, value)
	return r
}

// String sets the response's body to the passed string
func (r *Response) String(body string) *Response {
	r.Body = append(r.Body[:0], body...)
	return r
}

// Bytes sets the response's body to a copy of the passed slice.
func (r *Response) Bytes(body []byte) *Response {
	r.Body = append(r.Body[:0], body...)
	return r
}

// Write implements io.Writer interface. It always returns n=len(b) and err=nil
func (r *Response) Write(b []byte) (n int, err error) {
	r.Body = append(r.Body, b...)
	return len(b), nil
}

// JSON serializes the model into the body and sets the Content-Type accordingly.
func (r *Response) JSON(model any) error {
	r.Body = r.Body[:0]
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	json.ConfigDefault.ReturnStream(stream)
	if err != nil {
		return err
	}

	r.ContentType(mime.JSON)
	return nil
}

// File reads the whole file into the body, guessing the Content-Type by its extension.
// Directories and missing files result in status.ErrNotFound.
func (r *Response) File(path string) error {
	fd, err := os.Open(path)
	if err != nil {
		// if we can't open it, it doesn't exist
		return status.ErrNotFound
	}

	defer fd.Close()

	stat, err := fd.Stat()
	if err != nil {
		// ...and if we can't get stats on it, it exists, however something in system went wrong
		return status.ErrInternalServerError
	}

	if stat.IsDir() {
		return status.ErrNotFound
	}

	r.Body = r.Body[:0]
	if _, err = io.Copy(r, fd); err != nil {
		return status.ErrInternalServerError
	}

	r.ContentType(mime.ByExtension(path))
	return nil
}

// Error answers with the code of the error, if it's a status.HTTPError, otherwise with 500.
// Messages of other errors aren't exposed to the client.
func (r *Response) Error(err error) *Response {
	var httpErr status.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = status.ErrInternalServerError.(status.HTTPError)
	}

	return r.
		Code(httpErr.Code).
		ContentType(mime.Plain).
		String(httpErr.Message)
}

// Clear resets the response to 200 OK without headers and body.
func (r *Response) Clear() {
	r.Message.Clear()
	r.Code(status.OK)
}
