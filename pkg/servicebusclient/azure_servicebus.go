package servicebusclient

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/utils"
)

// AzureConfig holds the namespace settings for NewAzurePublisher.
type AzureConfig struct {
	// Namespace is the short namespace name, without .servicebus.windows.net.
	Namespace string
	// KeyName and KeyValue select shared access key auth; leave empty for the
	// default Azure credential chain.
	KeyName  string
	KeyValue string
	Queue    string
}

// AzurePublisher implements Publisher on an Azure Service Bus queue.
type AzurePublisher struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
	queue  string
	logger logging.Logger
}

// NewAzurePublisher connects to the namespace and opens a sender for cfg.Queue.
func NewAzurePublisher(cfg AzureConfig, logger logging.Logger) (*AzurePublisher, error) {
	var client *azservicebus.Client
	var err error

	if cfg.KeyName == "" || cfg.KeyValue == "" {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", credErr)
		}
		client, err = azservicebus.NewClient(fmt.Sprintf("%s.servicebus.windows.net", cfg.Namespace), cred, nil)
	} else {
		connStr := fmt.Sprintf("Endpoint=sb://%s.servicebus.windows.net/;SharedAccessKeyName=%s;SharedAccessKey=%s",
			cfg.Namespace, cfg.KeyName, cfg.KeyValue)
		client, err = azservicebus.NewClientFromConnectionString(connStr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := client.NewSender(cfg.Queue, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}

	return &AzurePublisher{
		client: client,
		sender: sender,
		queue:  cfg.Queue,
		logger: logger.With(logging.NewField("queue", cfg.Queue)),
	}, nil
}

// Publish sends one message. A message id is generated when none is given.
func (a *AzurePublisher) Publish(ctx context.Context, body []byte, opts ...SendOption) (string, error) {
	o := applyOptions(opts)
	if o.MessageID == "" {
		o.MessageID = utils.GenerateUUID()
	}

	msg := &azservicebus.Message{
		Body:      body,
		MessageID: &o.MessageID,
	}
	if o.ContentType != "" {
		msg.ContentType = &o.ContentType
	}
	if len(o.Properties) > 0 {
		msg.ApplicationProperties = make(map[string]interface{}, len(o.Properties))
		for k, v := range o.Properties {
			msg.ApplicationProperties[k] = v
		}
	}

	if err := a.sender.SendMessage(ctx, msg, nil); err != nil {
		a.logger.Error("Failed to send message", logging.NewField("error", err))
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	a.logger.Debug("Message sent", logging.NewField("message_id", o.MessageID))
	return o.MessageID, nil
}

// Close closes the sender and the client.
func (a *AzurePublisher) Close(ctx context.Context) error {
	if err := a.sender.Close(ctx); err != nil {
		return fmt.Errorf("failed to close sender: %w", err)
	}
	return a.client.Close(ctx)
}
