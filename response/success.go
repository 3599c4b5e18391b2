// response/success.go
package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HandleAPISuccessResponse decodes a successful JSON response body into out.
// A nil out drains the body and discards it.
func HandleAPISuccessResponse(resp *http.Response, out any) error {
	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
