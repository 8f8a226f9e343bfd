package observability

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const (
	logInstrumentation = "fantasy-draft/internal/platform/logging"
	maxNestedDepth     = 3
)

// quietPaths are request paths whose access logs stay local.
var quietPaths = map[string]struct{}{
	"/healthz": {},
}

func newLogMirror(serviceVersion string) logging.MirrorFunc {
	emitter := otelglobal.Logger(logInstrumentation, otellog.WithInstrumentationVersion(serviceVersion))

	return func(ctx context.Context, level logging.Level, msg string, args ...any) {
		if isQuietRequestLog(msg, args) {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}

		severity := severityOf(level)
		if !emitter.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
			return
		}

		now := time.Now().UTC()
		var record otellog.Record
		record.SetTimestamp(now)
		record.SetObservedTimestamp(now)
		record.SetSeverity(severity)
		record.SetSeverityText(strings.ToUpper(level.String()))
		record.SetEventName(msg)
		record.SetBody(otellog.StringValue(msg))
		if attrs := logAttributes(args); len(attrs) > 0 {
			record.AddAttributes(attrs...)
		}
		emitter.Emit(ctx, record)
	}
}

func isQuietRequestLog(msg string, args []any) bool {
	if msg != "http request" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, _ := args[i].(string); key == "path" {
			path, _ := args[i+1].(string)
			_, quiet := quietPaths[path]
			return quiet
		}
	}
	return false
}

func logAttributes(args []any) []otellog.KeyValue {
	if len(args) == 0 {
		return nil
	}

	out := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		if i+1 == len(args) {
			out = append(out, otellog.Empty(key))
			break
		}
		out = append(out, otellog.KeyValue{Key: key, Value: logValue(args[i+1], 0)})
	}
	return out
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level == zapcore.ErrorLevel:
		return otellog.SeverityError
	default:
		return otellog.SeverityFatal
	}
}

// logValue converts scalars directly. Containers are walked up to
// maxNestedDepth, anything else is rendered with fmt.
func logValue(value any, depth int) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int64:
		return otellog.Int64Value(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case float64:
		return otellog.Float64Value(v)
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	}
	if depth >= maxNestedDepth {
		return otellog.StringValue(fmt.Sprint(value))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return otellog.Value{}
		}
		return logValue(rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		items := make([]otellog.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, logValue(rv.Index(i).Interface(), depth+1))
		}
		return otellog.SliceValue(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		kvs := make([]otellog.KeyValue, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			kvs = append(kvs, otellog.KeyValue{Key: iter.Key().String(), Value: logValue(iter.Value().Interface(), depth+1)})
		}
		return otellog.MapValue(kvs...)
	}
	return otellog.StringValue(fmt.Sprint(value))
}
