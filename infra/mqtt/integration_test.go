//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremqtt "github.com/kilianp07/relaycoord/core/mqtt"
)

// TestPublishStudyMosquitto publishes to a real broker and reads the message back.
func TestPublishStudyMosquitto(t *testing.T) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)

	got := make(chan []byte, 1)
	tok = sub.Subscribe("relaycoord/studies/#", 1, func(_ paho.Client, m paho.Message) {
		got <- m.Payload()
	})
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	pub, err := NewPahoPublisher(Config{Enabled: true, Broker: broker, QoS: 1})
	require.NoError(t, err)
	defer pub.Disconnect()
	require.NoError(t, pub.PublishStudy(ctx, coremqtt.StudyMessage{StudyID: "it", Name: "feeder", FaultType: "phase"}))

	select {
	case payload := <-got:
		var msg coremqtt.StudyMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		require.Equal(t, "it", msg.StudyID)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}
