package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SDID constants for structured data IDs (RFC5424)
const (
	PEN         = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// AppName is the RFC5424 APP-NAME of every audit record
const AppName = "intellecta"

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH - security/authorization messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	appName  string
	pid      int
	now      func() time.Time
}

// NewLogger creates a new audit logger writing to w. A nil w writes to stdout.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   w,
		hostname: hostname,
		appName:  AppName,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// Log writes an audit event in RFC5424 syslog format
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) error {
	pri := event.Facility()*8 + int(event.Severity())
	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	logLine := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.writer, logLine)
	return err
}

// formatStructuredData formats the structured data according to RFC5424.
// SD-IDs and params are sorted so records are stable.
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var b strings.Builder
	for _, sdid := range sortedKeys(sd) {
		params := sd[sdid]
		b.WriteString("[")
		b.WriteString(sdid)
		for _, key := range sortedKeys(params) {
			fmt.Fprintf(&b, " %s=%s", key, escapeSDValue(params[key]))
		}
		b.WriteString("]")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// Auditor writes events to the syslog stream and, when a store is
// configured, persists them. A nil or disabled Auditor drops events.
type Auditor struct {
	logger  *Logger
	store   *Store
	log     *zap.Logger
	enabled bool
}

// Options configures an Auditor
type Options struct {
	Enabled bool
	Writer  io.Writer
	Store   *Store
	Logger  *zap.Logger
}

// NewAuditor creates an Auditor
func NewAuditor(opts Options) *Auditor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Auditor{
		logger:  NewLogger(opts.Writer),
		store:   opts.Store,
		log:     log.Named("audit"),
		enabled: opts.Enabled,
	}
}

// Enabled reports whether events are recorded
func (a *Auditor) Enabled() bool {
	return a != nil && a.enabled
}

// Log records an event. Failures are logged and never returned; auditing
// must not fail the request that produced the event.
func (a *Auditor) Log(ctx context.Context, event Event) {
	if !a.Enabled() {
		return
	}
	if err := a.logger.Log(event); err != nil {
		a.log.Warn("failed to write audit record", zap.String("msgid", event.MessageID()), zap.Error(err))
	}
	if a.store == nil {
		return
	}
	// The request context may already be cancelled once the response is out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.store.Save(ctx, event); err != nil {
		a.log.Warn("failed to save audit record", zap.String("msgid", event.MessageID()), zap.Error(err))
	}
}
