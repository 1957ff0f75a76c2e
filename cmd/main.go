package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/CaelSnow/windkraft-gpu/featureflag"
	windhttp "github.com/CaelSnow/windkraft-gpu/http"
	"github.com/CaelSnow/windkraft-gpu/lod"
	"github.com/CaelSnow/windkraft-gpu/models"
	"github.com/CaelSnow/windkraft-gpu/pipeline"
	windwebsocket "github.com/CaelSnow/windkraft-gpu/websocket"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The server version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "windkraft_info",
		Help:        "Windkraft server information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr                      string        `cli:""        env:"WINDKRAFT_ADDR"                        help:"Listening address for viewer connections."`
	AdminAddr                 string        `cli:""        env:"WINDKRAFT_ADMIN_ADDR"                  help:"Admin listening address."`
	LogLevel                  string        `cli:""        env:"WINDKRAFT_LOG_LEVEL"                   help:"Log level (debug|info|warning|error)."`
	LogIndent                 bool          `cli:""        env:"WINDKRAFT_LOG_INDENT"                  help:"Indent logs."`
	FrameDuration             time.Duration `cli:",hidden" env:"WINDKRAFT_FRAME_DURATION"              help:"The duration of a viewer frame."`
	ClientIdleTimeout         time.Duration `cli:",hidden" env:"WINDKRAFT_CLIENT_IDLE_TIMEOUT"         help:"Time until an idle viewer will be disconnected."`
	LogSummaryInterval        time.Duration `cli:",hidden" env:"WINDKRAFT_LOG_SUMMARY_INTERVAL"        help:"The duration between each log summary by connection."`
	TurbineCount              int           `cli:""        env:"WINDKRAFT_TURBINE_COUNT"               help:"The number of turbines in the generated field."`
	FieldSeed                 int64         `cli:",hidden" env:"WINDKRAFT_FIELD_SEED"                  help:"The seed of the generated turbine field."`
	LODPreset                 string        `cli:""        env:"WINDKRAFT_LOD_PRESET"                  help:"Level of detail preset (standard|aggressive|extreme|auto)."`
	MaxRange                  float64       `cli:",hidden" env:"WINDKRAFT_MAX_RANGE"                   help:"The camera distance where detail bottoms out."`
	SpatialPrefilterThreshold int           `cli:",hidden" env:"WINDKRAFT_SPATIAL_PREFILTER_THRESHOLD" help:"The candidate count above which the quadtree prefilter runs."`
	FeatureFlags              []string      `cli:",hidden" env:"WINDKRAFT_FEATURE_FLAGS"               help:"Comma separated feature flags"`
	Version                   bool          `cli:""        env:"-"                                     help:"Show version."`
	Help                      bool          `cli:""        env:"-"                                     help:"Show help."`
}

func main() {
	conf := config{
		Addr:                      ":4100",
		AdminAddr:                 ":18200",
		LogLevel:                  logs.InfoLevel.String(),
		FrameDuration:             time.Millisecond * 16,
		ClientIdleTimeout:         time.Minute * 5,
		LogSummaryInterval:        time.Minute,
		TurbineCount:              29722,
		FieldSeed:                 models.DefaultFieldSeed,
		LODPreset:                 "auto",
		MaxRange:                  float64(pipeline.DefaultMaxRange),
		SpatialPrefilterThreshold: pipeline.DefaultSpatialPrefilterThreshold,
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the windkraft viewer server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	scene, err := loadScene(conf)
	if err != nil {
		logs.Fatal(errors.New("loading scene failed").Wrap(err))
	}

	flags := featureflag.New(conf.FeatureFlags)

	pipe := pipeline.New(flags)
	pipe.MaxRange = float32(conf.MaxRange)
	pipe.SpatialPrefilterThreshold = conf.SpatialPrefilterThreshold

	ready := false

	var service http.ServeMux
	service.Handle("/health", windhttp.HandleWithCORS(http.HandlerFunc(windhttp.HandleHealthCheck)))
	service.Handle("/ready", windhttp.HandleWithCORS(windhttp.HandleReadyCheck(func() bool {
		return ready
	})))
	service.Handle("/version", windhttp.HandleWithCORS(windhttp.HandleVersion(version)))
	service.Handle("/stats", windhttp.HandleWithCORS(windhttp.HandleStats(pipe)))

	service.Handle("/", windhttp.HandleWithCORS(websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var rh windwebsocket.Handler = &windwebsocket.RealtimeHandler{
				FrameDuration:     conf.FrameDuration,
				ClientIdleTimeout: conf.ClientIdleTimeout,
				Scene:             scene,
				Pipeline:          pipe,
				FeatureFlags:      flags,
			}
			h := windwebsocket.HandlerWithLogs(rh, conf.LogSummaryInterval)
			h = windwebsocket.HandlerWithMetrics(h)
			defer h.Close()

			windwebsocket.Handle(ctx, conn, h)
		},
	}))

	service.Handle("/ping", websocket.Server{
		Handler: func(ws *websocket.Conn) {
			defer ws.Close()
			io.Copy(ws, ws)
		},
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", windhttp.HandleHealthCheck)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))
	admin.HandleFunc("/ready", windhttp.HandleReadyCheck(func() bool {
		return ready
	}))

	ready = true

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("turbines", scene.Len()).
		WithTag("lod_preset", scene.LODManager().Preset()).
		Info("starting windkraft server")

	windhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			windhttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

func loadScene(conf config) (*models.Scene, error) {
	if conf.TurbineCount <= 0 {
		return nil, errors.New("turbine count must be positive").
			WithTag("turbine_count", conf.TurbineCount)
	}

	scene := models.NewScene()
	scene.AddAll(models.GenerateField(conf.TurbineCount, conf.FieldSeed))
	scene.BuildCaches()

	switch conf.LODPreset {
	case "auto", "":

	case string(lod.PresetStandard), string(lod.PresetAggressive), string(lod.PresetExtreme):
		scene.SetLODPreset(lod.Preset(conf.LODPreset))

	default:
		return nil, errors.New("unknown lod preset").
			WithTag("lod_preset", conf.LODPreset)
	}

	return scene, nil
}
