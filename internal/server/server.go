package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vive-gamer/internal/ai"
	"vive-gamer/internal/config"
	"vive-gamer/internal/game"
	"vive-gamer/internal/imagegen"
	"vive-gamer/internal/words"
)

// Server wires the four rooms to HTTP and websocket clients.
type Server struct {
	db       *gorm.DB
	cfg      config.Config
	log      *logrus.Entry
	manager  *game.Manager
	gateways map[game.Mode]*gateway
	recorder *eventRecorder
	battle   *game.Battle
	ojama    *game.Ojama
	execs    []*game.SerialExecutor
	upgrader websocket.Upgrader
	cancel   context.CancelFunc
	once     sync.Once
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	registerValidators()
	ctx, cancel := context.WithCancel(context.Background())
	log := logrus.WithField("component", "server")
	s := &Server{
		db:       conn,
		cfg:      cfg,
		log:      log,
		gateways: make(map[game.Mode]*gateway, len(game.Modes)),
		recorder: newEventRecorder(conn, log),
		cancel:   cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	settings := game.SettingsFromConfig(cfg)
	s.battle = game.NewBattle(s.runtime(ctx, game.ModeBattle), s.deps(game.ModeBattle), settings.Battle, newResponder(cfg, log), words.BattleWords)
	s.ojama = game.NewOjama(s.runtime(ctx, game.ModeOjama), s.deps(game.ModeOjama), settings.Ojama, words.OjamaWords)
	sketch := game.NewSketch(s.runtime(ctx, game.ModeSketch), s.deps(game.ModeSketch), settings.Sketch, words.SketchSubjects)
	teleport := game.NewTeleport(s.runtime(ctx, game.ModeTeleport), s.deps(game.ModeTeleport), settings.Teleport, newSynthesizer(cfg, log), words.StyleCards)
	s.manager = game.NewManager(s.battle, s.ojama, sketch, teleport)

	if conn != nil {
		s.loadWordLibrary(ctx)
	}
	return s
}

func (s *Server) runtime(ctx context.Context, mode game.Mode) game.Runtime {
	rt, exec := game.NewRuntime(ctx, s.log.WithField("mode", string(mode)))
	s.execs = append(s.execs, exec)
	return rt
}

func (s *Server) deps(mode game.Mode) game.Deps {
	gw := newGateway(mode, s.log)
	s.gateways[mode] = gw
	return game.Deps{Notifier: gw, Recorder: s.recorder}
}

func newResponder(cfg config.Config, log logrus.FieldLogger) ai.Responder {
	mock := ai.NewMock()
	if cfg.OpenAIAPIKey == "" {
		return mock
	}
	return ai.NewVision(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIVisionModel, mock, log)
}

func newSynthesizer(cfg config.Config, log logrus.FieldLogger) imagegen.Synthesizer {
	var backend imagegen.Generator
	if cfg.OpenAIAPIKey != "" {
		backend = imagegen.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIImageModel)
	}
	return imagegen.NewService(backend, imagegen.NewCache(cfg.ImageCacheKeys), cfg.ImageCacheReuse, imagegen.WithLogger(log))
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	corsConfig := cors.DefaultConfig()
	if len(s.cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = s.cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/", s.handleHome)
	r.GET("/healthz", s.handleHealth)
	api := r.Group("/api")
	api.GET("/rooms", s.handleRooms)
	api.GET("/rooms/:mode", s.handleRoom)
	r.GET("/ws/:mode", s.handleWebsocket)
	return r
}

// Close disconnects every client and stops the room executors.
func (s *Server) Close() {
	s.once.Do(func() {
		s.cancel()
		for _, gw := range s.gateways {
			gw.closeAll()
		}
		for _, exec := range s.execs {
			exec.Close()
		}
		s.recorder.Wait()
	})
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debug("request")
	}
}
