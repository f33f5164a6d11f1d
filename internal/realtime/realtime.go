package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Event kinds published on a device's command topic.
const (
	EventUnpaired        = "unpaired"
	EventSuspended       = "suspended"
	EventResumed         = "resumed"
	EventPlaylistUpdated = "playlist_updated"
)

// DeviceEvent is the payload pushed to devices over MQTT. Unpaired events
// make the player clear its credentials; everything else triggers a re-fetch.
type DeviceEvent struct {
	Event    string `json:"event"`
	DeviceID int    `json:"device_id"`
}

var (
	deviceClients = make(map[int]mqtt.Client)
	clientMutex   sync.RWMutex
	brokerURL     = "tcp://0.0.0.0:1883"
)

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// SetBrokerURL allows configuration of the MQTT broker URL.
func SetBrokerURL(url string) {
	brokerURL = url
}

// DeviceTopic is the per-device command topic.
func DeviceTopic(deviceID int) string {
	return fmt.Sprintf("device/%d/commands", deviceID)
}

// CreateClient connects a new MQTT client with the given client ID.
func CreateClient(clientName string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientName)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// PublishDeviceEvent pushes an event to one device's topic. Delivery is best
// effort: publish failures are logged, the device picks the change up on its
// next poll anyway.
func PublishDeviceEvent(deviceID int, event string) {
	clientMutex.RLock()
	client, exists := deviceClients[deviceID]
	clientMutex.RUnlock()

	if !exists {
		var err error
		client, err = CreateClient(fmt.Sprintf("cyberyard-server-%d", deviceID))
		if err != nil {
			log.Warn().Err(err).Int("device_id", deviceID).Msg("could not reach MQTT broker for device event")
			return
		}
		clientMutex.Lock()
		deviceClients[deviceID] = client
		clientMutex.Unlock()
	}

	payload, err := json.Marshal(DeviceEvent{Event: event, DeviceID: deviceID})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal device event")
		return
	}

	token := client.Publish(DeviceTopic(deviceID), 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Warn().Err(token.Error()).Int("device_id", deviceID).Str("event", event).
			Msg("failed to publish device event")
		return
	}
	log.Debug().Int("device_id", deviceID).Str("event", event).Msg("published device event")
}

// Subscribe attaches handler to one device's command topic; used by the
// player to react to pushes without polling.
func Subscribe(client mqtt.Client, deviceID int, handler func(DeviceEvent)) error {
	topic := DeviceTopic(deviceID)
	token := client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var ev DeviceEvent
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic()).Msg("malformed device event")
			return
		}
		handler(ev)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}
	return nil
}

// Cleanup disconnects all cached publisher clients.
func Cleanup() {
	clientMutex.Lock()
	defer clientMutex.Unlock()

	for deviceID, client := range deviceClients {
		client.Disconnect(250)
		log.Debug().Int("device_id", deviceID).Msg("disconnected device publisher")
	}
	deviceClients = make(map[int]mqtt.Client)
}
