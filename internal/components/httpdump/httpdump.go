// Package httpdump writes every http exchange a resty client makes to a
// directory, one file per exchange, which is useful when a page changes
// shape and the parser needs to be updated.
package httpdump

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"
)

type Output interface {
	Write(id string, contents string)
}

type DirOutput struct {
	fs        afero.Fs
	directory string
}

// NewDirOutput clears directory and recreates it on fs.
func NewDirOutput(fs afero.Fs, directory string) (DirOutput, error) {
	err := fs.RemoveAll(directory)
	if err != nil {
		return DirOutput{}, err
	}
	err = fs.MkdirAll(directory, 0777)
	if err != nil {
		return DirOutput{}, err
	}
	return DirOutput{fs: fs, directory: directory}, nil
}

func (o DirOutput) Write(id string, contents string) {
	err := afero.WriteFile(o.fs, filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http exchange", "id", id, "err", err)
	}
}

type exchangeIdKey struct{}

// Instrument makes client write every response it receives to output, files
// are named by the order requests were started in.
func Instrument(client *resty.Client, output Output) {
	var counter atomic.Uint64

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		id := strconv.FormatUint(counter.Add(1), 10)
		req.SetContext(context.WithValue(req.Context(), exchangeIdKey{}, id))
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id, ok := res.Request.Context().Value(exchangeIdKey{}).(string)
		if !ok {
			return nil
		}
		output.Write(id+".txt", formatExchange(res))
		return nil
	})
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out strings.Builder
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(&out, "%s: %s\n", k, v)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

const noBody = "<NO BODY AVAILABLE>"

func formatRequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return noBody
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	if body == nil {
		return noBody
	}
	defer body.Close()
	read, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(read)
}

// 1: request method
// 2: request url
// 3: request headers
// 4: request body
// 5: response status
// 6: response headers
// 7: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s

%s

%s`

func formatExchange(res *resty.Response) string {
	var requestHeaders string
	if res.Request.RawRequest != nil {
		requestHeaders = formatHeaders(res.Request.RawRequest.Header)
	}
	return fmt.Sprintf(
		exchangeTemplate,
		res.Request.Method, res.Request.URL,
		requestHeaders,
		formatRequestBody(res.Request.RawRequest),
		res.Status(),
		formatHeaders(res.Header()),
		res.String(),
	)
}
