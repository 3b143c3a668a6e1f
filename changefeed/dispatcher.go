package changefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/googleapis/gax-go/v2"
	"github.com/pdcgo/ledger_service/configs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type Dispatcher func(ctx context.Context, req *cloudtaskspb.CreateTaskRequest, opts ...gax.CallOption) error

func NewCloudTaskDispatcher(
	client *cloudtasks.Client,
) Dispatcher {
	return func(ctx context.Context, req *cloudtaskspb.CreateTaskRequest, opts ...gax.CallOption) error {
		_, err := client.CreateTask(ctx, req, opts...)
		return err
	}
}

// NewLocalDispatcher posts the task body straight to its url, for running
// without a queue.
func NewLocalDispatcher(client *http.Client) Dispatcher {
	return func(ctx context.Context, req *cloudtaskspb.CreateTaskRequest, opts ...gax.CallOption) error {
		httpreq := req.Task.GetHttpRequest()

		htreq, err := http.NewRequestWithContext(ctx, http.MethodPost, httpreq.GetUrl(), bytes.NewBuffer(httpreq.Body))
		if err != nil {
			return err
		}
		for k, v := range httpreq.GetHeaders() {
			htreq.Header.Set(k, v)
		}

		res, err := client.Do(htreq)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode >= 300 {
			return fmt.Errorf("changefeed subscriber returned %s", res.Status)
		}
		return nil
	}
}

// TaskNotifier pushes events as http tasks to the configured subscriber.
type TaskNotifier struct {
	cfg      *configs.ChangefeedConfig
	dispatch Dispatcher
}

func NewTaskNotifier(cfg *configs.ChangefeedConfig, dispatch Dispatcher) *TaskNotifier {
	return &TaskNotifier{
		cfg:      cfg,
		dispatch: dispatch,
	}
}

// Publish implements Publisher.
func (n *TaskNotifier) Publish(ctx context.Context, event *Event) error {
	content, err := json.Marshal(event)
	if err != nil {
		return err
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	task := cloudtaskspb.CreateTaskRequest{
		Parent: n.cfg.QueuePath,
		Task: &cloudtaskspb.Task{
			MessageType: &cloudtaskspb.Task_HttpRequest{
				HttpRequest: &cloudtaskspb.HttpRequest{
					Url:        n.cfg.Endpoint,
					HttpMethod: cloudtaskspb.HttpMethod_POST,
					Headers:    headers,
					Body:       content,
				},
			},
		},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	return n.dispatch(ctx, &task)
}
