package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/config"
	"github.com/cyberyard-io/cyberyard/internal/player/api"
	"github.com/cyberyard-io/cyberyard/internal/player/credentials"
	"github.com/cyberyard-io/cyberyard/internal/player/sync"
	"github.com/cyberyard-io/cyberyard/internal/realtime"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadPlayer()
	if err != nil {
		log.Fatal().Err(err).Msg("player config")
	}

	client := api.NewClient(cfg.ServerURL)
	creds := credentials.NewFileStore(cfg.StateDir)
	cache := sync.NewCache(cfg.StateDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for ctx.Err() == nil {
		token, info, err := creds.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("load credentials")
		}
		if token == "" {
			info, err = pairInteractively(ctx, client, creds)
			if err != nil {
				log.Fatal().Err(err).Msg("pairing")
			}
			if info == nil {
				return // interrupted
			}
		}

		log.Info().Int("device_id", info.DeviceID).Str("name", info.DeviceName).Msg("device ready")
		runPaired(ctx, cfg, client, creds, cache, info.DeviceID)
	}
}

// runPaired drives sync and playback until the context ends or the server
// rejects our credentials, in which case it returns so main can re-pair.
func runPaired(ctx context.Context, cfg *config.Player, client *api.Client, creds credentials.Store, cache *sync.Cache, deviceID int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	actor := sync.NewActor(client, creds, cache, func() { cancel() })
	actor.SetInterval(cfg.SyncInterval)

	if cfg.MQTTBrokerURL != "" {
		realtime.SetBrokerURL(cfg.MQTTBrokerURL)
		mqttClient, err := realtime.CreateClient(fmt.Sprintf("cyberyard-player-%d-%s", deviceID, uuid.NewString()[:8]))
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable, falling back to polling only")
		} else {
			defer mqttClient.Disconnect(250)
			err = realtime.Subscribe(mqttClient, deviceID, func(ev realtime.DeviceEvent) {
				log.Debug().Str("event", ev.Event).Msg("device event received")
				if ev.Event == realtime.EventUnpaired {
					// no point confirming over HTTP, the token is already dead
					if err := creds.Clear(); err != nil {
						log.Error().Err(err).Msg("failed to clear credentials")
					}
					if err := cache.Clear(); err != nil {
						log.Error().Err(err).Msg("failed to clear cached playlist")
					}
					cancel()
					return
				}
				actor.Trigger()
			})
			if err != nil {
				log.Warn().Err(err).Msg("MQTT subscribe failed, falling back to polling only")
			}
		}
	}

	driver := NewDriver(cfg.PlayerCommand, actor.Updates())
	go driver.Run(ctx)

	actor.Run(ctx)
}

// pairInteractively prompts for a pairing code or QR token on stdin and
// exchanges it for credentials. It loops until pairing succeeds.
func pairInteractively(ctx context.Context, client *api.Client, creds credentials.Store) (*credentials.Info, error) {
	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return nil, nil
		}

		fmt.Print("Enter pairing code (or QR token): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read pairing input: %w", err)
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if len(input) == 6 {
			// QR tokens are case sensitive, only typed codes get upcased
			input = strings.ToUpper(input)
		}

		resp, err := client.Pair(ctx, input)
		if err != nil {
			log.Error().Err(err).Msg("pairing failed")
			continue
		}

		info := credentials.Info{
			DeviceID:   resp.DeviceID,
			DeviceName: resp.DeviceName,
			CompanyID:  resp.CompanyID,
			PlaylistID: resp.PlaylistID,
		}
		if err := creds.Save(resp.AuthToken, info); err != nil {
			return nil, err
		}
		return &info, nil
	}
}
