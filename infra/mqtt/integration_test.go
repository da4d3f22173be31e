package mqtt

import (
	"context"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/catering/core/model"
)

func startMosquitto(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// A subscriber connecting after the publish still receives the retained snapshot.
func TestStatusPublisherRetainedOnBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	broker := startMosquitto(t)

	pub, err := NewStatusPublisher(Config{Broker: broker, ClientID: "status-pub", QoS: map[string]byte{"status": 1}})
	if err != nil {
		t.Fatalf("connect publisher: %v", err)
	}
	defer pub.Disconnect()
	snap := []model.VehicleSnapshot{{VehicleID: "cat-1", Status: model.StatusAvailable, BaseNode: "garage", CurrentNode: "garage"}}
	if err := pub.Publish(context.Background(), snap); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("status-sub"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("connect subscriber: %v", token.Error())
	}
	defer sub.Disconnect(100)
	token := sub.Subscribe(DefaultStatusTopic, 1, func(_ paho.Client, m paho.Message) {
		select {
		case got <- m.Payload():
		default:
		}
	})
	if token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	select {
	case payload := <-got:
		ev, err := DecodeStatus(payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(ev.Vehicles) != 1 || ev.Vehicles[0].VehicleID != "cat-1" {
			t.Fatalf("unexpected snapshot %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("retained snapshot not received")
	}
}
