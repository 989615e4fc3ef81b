package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
	"gopkg.in/ini.v1"

	"tech-translator/db"
	"tech-translator/internal/config"
	logging "tech-translator/internal/logging"
	"tech-translator/mcpserver"
	toolsrv "tech-translator/tools"
	"tech-translator/utility"
)

// translateRateLimiter provides basic IP-based throttling for /translate
type translateRateLimiter struct {
	mu     sync.Mutex
	ip     map[string]*rate.Limiter
	ipSeen map[string]time.Time
}

var lr = &translateRateLimiter{
	ip:     make(map[string]*rate.Limiter),
	ipSeen: make(map[string]time.Time),
}

// getLimiter returns the IP limiter, creating one if needed.
func (l *translateRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.ip[ip]
	if !ok {
		// ~10 requests/minute with burst of 5
		lim = rate.NewLimiter(rate.Every(6*time.Second), 5)
		l.ip[ip] = lim
	}
	l.ipSeen[ip] = time.Now()
	return lim
}

// cleanup prunes stale IP entries to bound memory usage.
func (l *translateRateLimiter) cleanup() {
	const ipExpiry = 24 * time.Hour

	l.mu.Lock()
	now := time.Now()
	snapIPSeen := maps.Clone(l.ipSeen)
	snapIP := maps.Clone(l.ip)
	l.mu.Unlock()

	newIPs := make(map[string]*rate.Limiter, len(snapIP))
	newIPSeen := make(map[string]time.Time, len(snapIPSeen))
	for ip, seen := range snapIPSeen {
		if now.Sub(seen) <= ipExpiry {
			if lim, ok := snapIP[ip]; ok {
				newIPs[ip] = lim
				newIPSeen[ip] = seen
			}
		}
	}

	l.mu.Lock()
	l.ip = newIPs
	l.ipSeen = newIPSeen
	l.mu.Unlock()
}

// Cached allowlist of origins for WebSocket upgrades
var (
	allowedOrigins     map[string]struct{}
	allowedOriginsOnce sync.Once
)

// WebSocket upgrader for streaming translations
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: isAllowedWSOrigin,
}

// isAllowedWSOrigin restricts WebSocket connections to trusted origins.
// Allowed origins can be configured via [default] ALLOWED_ORIGINS in the INI
// config (comma-separated full origins). If not configured, only same-origin
// connections are allowed.
func isAllowedWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if strings.TrimSpace(origin) == "" {
		return false
	}
	if u, err := url.Parse(origin); err != nil {
		return false
	} else if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	allowedOriginsOnce.Do(func() {
		allowedOrigins = make(map[string]struct{})
		if cfg, err := utility.LoadConfig(); err == nil && cfg != nil {
			if raw := strings.TrimSpace(cfg["ALLOWED_ORIGINS"]); raw != "" {
				for _, item := range strings.Split(raw, ",") {
					a := strings.TrimSpace(item)
					if a != "" {
						allowedOrigins[a] = struct{}{}
					}
				}
			}
		} else if err != nil {
			log.Printf("[TranslateWS] failed to load config for allowed origins: %v. Falling back to same-origin policy.", err)
		}
	})

	// If an allowlist is configured, use it exclusively.
	if len(allowedOrigins) > 0 {
		_, ok := allowedOrigins[origin]
		return ok
	}

	scheme := "http"
	if utility.IsSecure(r) {
		scheme = "https"
	}
	return origin == fmt.Sprintf("%s://%s", scheme, r.Host)
}

// runMigrateCLI handles: migrate up [--step N], migrate down --step N, migrate status
func runMigrateCLI(args []string) int {
	if len(args) == 0 {
		fmt.Println("Usage:\n  tech-translator migrate up [--step N]\n  tech-translator migrate down --step N\n  tech-translator migrate status")
		return 2
	}
	cfgPath := os.ExpandEnv(config.ConfigFilePath)
	cfgIni, err := ini.Load(cfgPath)
	if err != nil {
		fmt.Printf("[Postgres] Config not loaded (%v)\n", err)
		return 1
	}
	dbConn, pgcfg, derr := db.Init(cfgIni)
	if derr != nil {
		fmt.Printf("[Postgres] Init failed: %v\n", derr)
		return 1
	}
	defer func() { _ = dbConn.Close() }()

	switch args[0] {
	case "up":
		fs := flag.NewFlagSet("up", flag.ContinueOnError)
		step := fs.Int("step", 0, "number of up migrations to apply (0=all)")
		if err := fs.Parse(args[1:]); err != nil {
			fmt.Printf("[Migrate] parse error: %v\n", err)
			return 2
		}
		if err := db.MigrateUp(dbConn, pgcfg.MigrationsDir, *step); err != nil {
			fmt.Printf("[Migrate] up error: %v\n", err)
			return 1
		}
		fmt.Println("[Migrate] up completed")
		return 0
	case "down":
		fs := flag.NewFlagSet("down", flag.ContinueOnError)
		step := fs.Int("step", -1, "number of migrations to roll back (required)")
		if err := fs.Parse(args[1:]); err != nil {
			fmt.Printf("[Migrate] parse error: %v\n", err)
			return 2
		}
		if *step <= 0 {
			fmt.Println("[Migrate] down requires --step N (N>0)")
			return 2
		}
		if err := db.MigrateDown(dbConn, pgcfg.MigrationsDir, *step); err != nil {
			fmt.Printf("[Migrate] down error: %v\n", err)
			return 1
		}
		fmt.Println("[Migrate] down completed")
		return 0
	case "status":
		applied, pending, err := db.MigrateStatus(dbConn, pgcfg.MigrationsDir)
		if err != nil {
			fmt.Printf("[Migrate] status error: %v\n", err)
			return 1
		}
		fmt.Println("Applied:")
		for _, v := range applied {
			fmt.Printf("  - %s\n", v)
		}
		fmt.Println("Pending:")
		for _, v := range pending {
			fmt.Printf("  - %s\n", v)
		}
		return 0
	default:
		fmt.Println("Unknown migrate subcommand. Use: up, down, status")
		return 2
	}
}

// verifySlackRequest checks the Slack signing headers when a signing secret
// is configured. Without a secret the webhook accepts events unverified.
func verifySlackRequest(c *gin.Context, body []byte) bool {
	secret := utility.ConfigValue("SLACK_SIGNING_SECRET")
	if secret == "" {
		return true
	}
	ts := c.Request.Header.Get("X-Slack-Request-Timestamp")
	if tsUnix, err := strconv.ParseInt(strings.TrimSpace(ts), 10, 64); err != nil {
		return false
	} else if d := time.Since(time.Unix(tsUnix, 0)); d > 5*time.Minute || d < -5*time.Minute {
		// Stale timestamps are replays
		return false
	}
	sig := c.Request.Header.Get("X-Slack-Signature")
	return utility.VerifySlackSignature(secret, strings.TrimSpace(ts), sig, body)
}

func main() {
	// Setup logging
	f, err := logging.Setup()
	if err != nil {
		log.Printf("[Startup] Failed to setup logging: %v", err)
	} else if f != nil {
		defer f.Close()
	}
	log.Printf("[Startup] Starting tech-translator server")

	// CLI migrate
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		os.Exit(runMigrateCLI(os.Args[2:]))
		return
	}

	// Load config and init DB/migrations if possible
	cfgPath := os.ExpandEnv(config.ConfigFilePath)
	cfgIni, iniErr := ini.Load(cfgPath)
	if iniErr == nil {
		if dbConn, pgcfg, derr := db.Init(cfgIni); derr != nil {
			log.Printf("[Postgres] Init failed: %v (continuing without DB)", derr)
		} else {
			defer func() { _ = dbConn.Close() }()
			if merr := db.RunMigrations(dbConn, pgcfg.MigrationsDir); merr != nil {
				log.Printf("[Postgres] Migrations error: %v", merr)
			} else {
				log.Printf("[Postgres] Migrations applied from %s", pgcfg.MigrationsDir)
			}
		}
	} else {
		log.Printf("[Config] Load failed (%v); continuing with defaults", iniErr)
	}

	// The bearer token gates every remote-callable operation.
	authToken := utility.ConfigValue("AUTH_TOKEN")
	if authToken == "" {
		log.Fatalf("[Auth] CRITICAL: AUTH_TOKEN missing; set it in %s or the environment", config.ConfigFilePath)
	}
	log.Printf("[Auth] Bearer token configured: %s", utility.MaskToken(authToken))

	// Determine addresses
	apiAddr := "0.0.0.0:7866"
	if v := utility.ConfigValue("API_ADDR"); v != "" {
		apiAddr = v
	}
	mcpAddr := "0.0.0.0:8086"
	if v := utility.ConfigValue("MCP_ADDR"); v != "" {
		mcpAddr = v
	}

	// Start tool server
	toolServer := toolsrv.NewServer(utility.GetToolsAddr())
	go func() {
		log.Printf("[Tools] Starting tool server on %s", utility.GetToolsAddr())
		if err := toolServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[Tools] Tool server error: %v", err)
		}
	}()

	// Start MCP server
	mcpHTTP := mcpserver.NewHTTPServer(mcpserver.New(authToken))
	go func() {
		log.Printf("[MCP] Starting MCP server on %s", mcpAddr)
		if err := mcpHTTP.Start(mcpAddr); err != nil && err != http.ErrServerClosed {
			log.Printf("[MCP] Server error: %v", err)
		}
	}()

	// Periodic cleanup for the rate limiter to bound memory usage
	cleanupStop := make(chan struct{})
	cleanupTicker := time.NewTicker(10 * time.Minute)
	go func() {
		for {
			select {
			case <-cleanupTicker.C:
				lr.cleanup()
			case <-cleanupStop:
				cleanupTicker.Stop()
				return
			}
		}
	}()

	// Gin router and routes
	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "tech-translator API"})
	})

	auth := r.Group("/", utility.BearerAuthMiddleware(authToken))

	auth.GET("/tools", func(c *gin.Context) {
		list, err := utility.GetAvailableTools()
		if err != nil {
			log.Printf("[API] tool list error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tools"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tools": list})
	})

	auth.POST("/translate", func(c *gin.Context) {
		ip := c.ClientIP()
		if !lr.getLimiter(ip).Allow() {
			c.Header("Retry-After", "30")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		var req struct {
			Text string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		items, err := utility.TranslateText(req.Text)
		if err != nil {
			log.Printf("[Translate] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message. Please try again later."})
			return
		}
		var parts []string
		for _, item := range items {
			parts = append(parts, item.Text)
		}
		if err := utility.StoreTranslation(req.Text, strings.Join(parts, "\n\n"), len(items), "http", nil); err != nil {
			log.Printf("[DB] Failed to store translation: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"content": items, "sections": len(items)})
	})

	auth.GET("/history", func(c *gin.Context) {
		limit := 20
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		list, err := utility.RecentTranslations(limit)
		if err != nil {
			log.Printf("[History] query error: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"translations": list})
	})

	// WebSocket endpoint: each text message is translated and the sections
	// are streamed back one item at a time. Browsers cannot set headers on
	// upgrade requests, so the token may arrive as a query parameter.
	r.GET("/translate/ws", func(c *gin.Context) {
		got := utility.ParseBearerToken(c.Request.Header.Get("Authorization"))
		if got == "" {
			got = strings.TrimSpace(c.Query("token"))
		}
		if !utility.SecureCompare(got, authToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[TranslateWS] upgrade error: %v", err)
			return
		}
		defer conn.Close()

		const pongWait = 60 * time.Second
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[TranslateWS] read error: %v", err)
				}
				return
			}
			if mt != websocket.TextMessage {
				continue
			}
			conn.SetReadDeadline(time.Now().Add(pongWait))
			text := strings.TrimSpace(string(msg))
			if text == "" {
				continue
			}
			items, err := utility.TranslateText(text)
			if err != nil {
				log.Printf("[TranslateWS] translate error: %v", err)
				_ = conn.WriteJSON(gin.H{"error": "translation failed"})
				continue
			}
			for _, item := range items {
				if err := conn.WriteJSON(item); err != nil {
					log.Printf("[TranslateWS] write error: %v", err)
					return
				}
			}
			if err := conn.WriteJSON(gin.H{"done": true, "sections": len(items)}); err != nil {
				return
			}
		}
	})

	r.POST("/webhook/slack", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
			return
		}
		if !verifySlackRequest(c, body) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		var ev slack.Event
		if err := json.Unmarshal(body, &ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event"})
			return
		}
		if ev.Type == "url_verification" {
			var ch struct {
				Challenge string `json:"challenge"`
			}
			if err := json.Unmarshal(body, &ch); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid challenge"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"challenge": ch.Challenge})
			return
		}
		if ev.Type == "event_callback" {
			var cb struct {
				Event struct {
					Type string `json:"type"`
					User string `json:"user"`
				} `json:"event"`
			}
			if err := json.Unmarshal(body, &cb); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback"})
				return
			}
			if cb.Event.Type == "app_home_opened" {
				if err := utility.PublishSlackHomeTab(cb.Event.User); err != nil {
					log.Printf("[Slack] home tab publish failed: %v", err)
				}
				c.JSON(http.StatusOK, gin.H{"status": "home tab handled"})
				return
			}
			var mb struct {
				Event slack.MessageEvent `json:"event"`
			}
			if err := json.Unmarshal(body, &mb); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback"})
				return
			}
			utility.HandleSlackMessage(c, &mb.Event, utility.TranslateText)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "event received"})
	})

	// HTTP server with graceful shutdown
	apiServer := &http.Server{Addr: apiAddr, Handler: r}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Printf("[API] Starting HTTP server on %s", apiAddr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[API] Server error: %v", err)
		}
	}()
	sig := <-quit
	log.Printf("[Shutdown] Signal: %v", sig)
	close(cleanupStop)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(ctx)
	_ = toolServer.Shutdown(ctx)
	_ = mcpHTTP.Shutdown(ctx)
}
