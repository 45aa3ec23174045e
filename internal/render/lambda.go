// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render dispatches prerender jobs to the external AWS Lambda
// renderer. The Lambda fetches the page URL in a headless browser, waits
// for the hinted JS global, extracts the configured element, and posts the
// HTML back to the callback endpoint.
package render

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// Invoker fires one asynchronous render call.
type Invoker interface {
	Invoke(ctx context.Context, payload []byte) error
}

// Lambda invokes the renderer function with event (fire-and-forget)
// semantics: the call returns as soon as Lambda accepts the event, minutes
// before the render completes.
type Lambda struct {
	client   *lambda.Client
	function string
}

// NewLambda creates a Lambda invoker with static credentials.
func NewLambda(region, accessKey, secretKey, function string) *Lambda {
	client := lambda.New(lambda.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
	})
	return &Lambda{client: client, function: function}
}

// Invoke fires the render event. An error means Lambda did not accept the
// call; the render itself reports nothing back here.
func (l *Lambda) Invoke(ctx context.Context, payload []byte) error {
	out, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(l.function),
		Payload:        payload,
		InvocationType: lambdatypes.InvocationTypeEvent,
	})
	if err != nil {
		return fmt.Errorf("lambda invoke: %w", err)
	}
	if out.StatusCode != http.StatusAccepted {
		return fmt.Errorf("lambda invoke: status %d, function error %s",
			out.StatusCode, aws.ToString(out.FunctionError))
	}
	return nil
}
