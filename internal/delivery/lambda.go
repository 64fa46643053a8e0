package delivery

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/order-fulfillment/internal/api/middleware"
)

// HandleAPIGateway answers an API Gateway proxy request with the same key
// check and outcomes as the HTTP router.
func (p *Processor) HandleAPIGateway(ctx context.Context, functionsKey string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if req.HTTPMethod != http.MethodPost {
		return textResponse(http.StatusMethodNotAllowed, "Method not allowed")
	}

	key := headerValue(req.Headers, FunctionsKeyHeader)
	if key == "" {
		key = req.QueryStringParameters["code"]
	}
	if !middleware.ValidFunctionKey(key, functionsKey) {
		return textResponse(http.StatusUnauthorized, "Unauthorized")
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return textResponse(http.StatusBadRequest, "invalid base64 body")
		}
		body = decoded
	}

	status, message := p.Respond(ctx, body)
	return textResponse(status, message)
}

// headerValue looks name up case-insensitively; API Gateway passes headers
// through as sent.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       body,
	}
}
