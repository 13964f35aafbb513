package redisserver

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/yndnr/respkv-go/internal/storage/memory"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
	"github.com/yndnr/respkv-go/pkg/resp"
)

// Reply literals shared by several commands.
const (
	errExpectedBulkArray = "ERR Protocol error: expected array of bulk strings"
	errEmptyCommand      = "ERR empty command"
	errSyntax            = "ERR syntax error"
)

// maxUnknownArgsLen caps the argument echo in unknown command replies.
const maxUnknownArgsLen = 128

type commandFunc func(h *CommandHandler, ctx context.Context, args [][]byte) resp.Value

type command struct {
	// name is the lower-case command name used in replies and metrics.
	name    string
	minArgs int
	// maxArgs < 0 means no upper bound.
	maxArgs int
	fn      commandFunc
}

var commandTable = map[string]*command{
	"GET":      {name: "get", minArgs: 1, maxArgs: 1, fn: (*CommandHandler).handleGet},
	"SET":      {name: "set", minArgs: 2, maxArgs: -1, fn: (*CommandHandler).handleSet},
	"DEL":      {name: "del", minArgs: 1, maxArgs: -1, fn: (*CommandHandler).handleDel},
	"FLUSHALL": {name: "flushall", minArgs: 0, maxArgs: 0, fn: (*CommandHandler).handleFlushAll},
	"COMMAND":  {name: "command", minArgs: 0, maxArgs: -1, fn: (*CommandHandler).handleCommand},
}

// CommandHandler maps decoded requests to store operations. It performs no
// I/O and is safe for concurrent use by many connections.
type CommandHandler struct {
	store   *memory.Store
	metrics *metric.Registry
}

// NewCommandHandler creates a new CommandHandler. metrics may be nil.
func NewCommandHandler(store *memory.Store, metrics *metric.Registry) *CommandHandler {
	return &CommandHandler{
		store:   store,
		metrics: metrics,
	}
}

// Dispatch handles one decoded top-level frame and returns the reply.
func (h *CommandHandler) Dispatch(ctx context.Context, v resp.Value) resp.Value {
	if v.Type != resp.TypeArray {
		return resp.Error(errExpectedBulkArray)
	}
	if v.Null || len(v.Array) == 0 {
		return resp.Error(errEmptyCommand)
	}
	return h.Handle(ctx, v.Array)
}

// Handle executes one command given as its array elements. The first element
// is the command name, matched case-insensitively.
func (h *CommandHandler) Handle(ctx context.Context, args []resp.Value) resp.Value {
	if len(args) == 0 {
		return resp.Error(errEmptyCommand)
	}

	raw := make([][]byte, len(args))
	for i, a := range args {
		if a.Type != resp.TypeBulkString || a.Null {
			return resp.Error(errExpectedBulkArray)
		}
		raw[i] = a.Bulk
	}

	start := time.Now()
	cmd, ok := commandTable[strings.ToUpper(string(raw[0]))]
	if !ok {
		logger.L(ctx).Debug("unknown command", "command", logger.Truncate(raw[0], 0))
		reply := unknownCommand(raw[0], raw[1:])
		h.observe(metric.UnknownCommand, reply, start)
		return reply
	}

	var reply resp.Value
	params := raw[1:]
	if len(params) < cmd.minArgs || (cmd.maxArgs >= 0 && len(params) > cmd.maxArgs) {
		reply = wrongArity(cmd.name)
	} else {
		reply = cmd.fn(h, ctx, params)
	}
	h.observe(cmd.name, reply, start)
	return reply
}

func (h *CommandHandler) observe(name string, reply resp.Value, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveCommand(name, reply.IsError(), time.Since(start).Seconds())
}

// GET key
func (h *CommandHandler) handleGet(_ context.Context, args [][]byte) resp.Value {
	value, ok := h.store.Get(args[0])
	if !ok {
		return resp.NullBulk()
	}
	return resp.Bulk(value)
}

// SET key value
//
// Options such as EX or NX are not supported; any extra argument is a
// syntax error rather than being ignored.
func (h *CommandHandler) handleSet(_ context.Context, args [][]byte) resp.Value {
	if len(args) > 2 {
		return resp.Error(errSyntax)
	}
	h.store.Set(args[0], args[1])
	return resp.SimpleString("OK")
}

// DEL key [key ...]
func (h *CommandHandler) handleDel(_ context.Context, args [][]byte) resp.Value {
	return resp.Integer(h.store.Del(args...))
}

// FLUSHALL
func (h *CommandHandler) handleFlushAll(ctx context.Context, _ [][]byte) resp.Value {
	h.store.FlushAll()
	logger.L(ctx).Info("keyspace flushed")
	return resp.SimpleString("OK")
}

// COMMAND [...] is sent by redis-cli on connect; reply OK so it proceeds.
func (h *CommandHandler) handleCommand(_ context.Context, _ [][]byte) resp.Value {
	return resp.SimpleString("OK")
}

func wrongArity(name string) resp.Value {
	return resp.Error("ERR wrong number of arguments for '" + name + "' command")
}

func unknownCommand(name []byte, args [][]byte) resp.Value {
	var b bytes.Buffer
	for _, a := range args {
		room := maxUnknownArgsLen - b.Len()
		if room <= 0 {
			break
		}
		if len(a) > room {
			a = a[:room]
		}
		b.WriteByte('\'')
		b.Write(a)
		b.WriteString("' ")
	}
	if len(name) > maxUnknownArgsLen {
		name = name[:maxUnknownArgsLen]
	}
	msg := "ERR unknown command `" + string(name) + "`, with args beginning with: " + b.String()
	// Error lines must be valid UTF-8 for the reply to decode.
	return resp.Error(strings.ToValidUTF8(msg, "\uFFFD"))
}
