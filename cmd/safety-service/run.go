package safety_service

import (
	"fmt"
	"net/http"

	alertrmq "aparajita/internal/alert/rmq"
	alertservice "aparajita/internal/alert/service"
	"aparajita/internal/common/config"
	"aparajita/internal/common/logger"
	"aparajita/internal/common/scheduler"
	commonws "aparajita/internal/common/websocket"
	locservice "aparajita/internal/location/service"
	"aparajita/internal/lookup"
	"aparajita/internal/maprender"
	safeexitservice "aparajita/internal/safeexit/service"
	"aparajita/internal/safety/handler"
	safetyservice "aparajita/internal/safety/service"
)

// Run wires the safety service and blocks on the HTTP listener.
func Run(cfg *config.Config) error {
	logger.SetServiceName("safety-service")

	rmqClient, err := alertrmq.NewClient(cfg.RabbitURL(), cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue)
	if err != nil {
		return fmt.Errorf("alert rmq client: %w", err)
	}
	defer rmqClient.Close()

	adapters := lookup.StubAdapters()
	refresher := lookup.NewRefresher(adapters, cfg.Lookup.CacheTTL)

	ingestor := locservice.NewIngestor(cfg.Location.RefreshThresholdMeters)
	alerts := alertservice.NewManager(cfg.Alert.TTL, rmqClient)
	safeExit := safeexitservice.NewRegistry(alerts, adapters.Notifier, ingestor)

	hub := commonws.NewHub()
	svc := safetyservice.NewService(ingestor, alerts, safeExit, refresher, hub, maprender.Noop{}, cfg.Proximity.RadiusMeters)

	if err := alerts.Attach(rmqClient); err != nil {
		return fmt.Errorf("attach alert source: %w", err)
	}

	cron := scheduler.New(nil)
	if _, err := cron.Every(cfg.Alert.SweepInterval, scheduler.FuncJob(alerts.Sweep)); err != nil {
		return fmt.Errorf("schedule alert sweep: %w", err)
	}
	if _, err := cron.Every(cfg.SafeExit.TickInterval, scheduler.FuncJob(safeExit.Tick)); err != nil {
		return fmt.Errorf("schedule safe-exit tick: %w", err)
	}
	cron.Start()
	defer cron.Stop()

	h := handler.NewHandler(svc, alerts, safeExit, refresher, hub)
	router := handler.NewRouter(h)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	logger.Info("listening", "safety service listening on "+addr, "", "")
	return http.ListenAndServe(addr, router)
}
