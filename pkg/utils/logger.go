package utils

// logger.go - настройка структурированного логирования
//
// Назначение:
// Инициализация и настройка zap-логгера для всех компонентов системы.
// Поддерживает JSON и text форматы, вывод в файл или stderr,
// глобальный логгер для пакетов без внедрённой зависимости.

import (
	"math"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig - конфигурация логгера
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json или text
	Output      string // путь к файлу; пусто - stderr
	Development bool   // режим разработки (caller, stacktrace на warn)
}

// Logger оборачивает zap.Logger вместе с sugar-вариантом
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// parseLevel преобразует строковый уровень в zapcore.Level.
// Неизвестные значения трактуются как info.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger создаёт логгер по конфигурации.
// При ошибке открытия файла вывода откатывается на stderr.
func InitLogger(config LogConfig) *Logger {
	level := parseLevel(config.Level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if strings.ToLower(config.Format) == "text" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var sink zapcore.WriteSyncer
	if config.Output != "" {
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			sink = zapcore.AddSync(os.Stderr)
		} else {
			sink = zapcore.AddSync(file)
		}
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder, sink, level)

	opts := []zap.Option{}
	if config.Development {
		opts = append(opts, zap.Development(), zap.AddCaller())
	}

	zapLogger := zap.New(core, opts...)
	return &Logger{
		Logger: zapLogger,
		sugar:  zapLogger.Sugar(),
	}
}

// ============================================================
// Глобальный логгер
// ============================================================

// InitGlobalLogger инициализирует глобальный логгер по конфигурации
func InitGlobalLogger(config LogConfig) *Logger {
	logger := InitLogger(config)
	SetGlobalLogger(logger)
	return logger
}

// SetGlobalLogger устанавливает глобальный логгер
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger возвращает глобальный логгер,
// создавая логгер по умолчанию при первом обращении
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{Level: "info", Format: "json"})
	}
	return globalLogger
}

// L - короткий алиас для GetGlobalLogger
func L() *Logger {
	return GetGlobalLogger()
}

// ============================================================
// Методы Logger
// ============================================================

// With возвращает новый логгер с дополнительными полями
func (l *Logger) With(fields ...zap.Field) *Logger {
	newZap := l.Logger.With(fields...)
	return &Logger{
		Logger: newZap,
		sugar:  newZap.Sugar(),
	}
}

// WithComponent возвращает логгер с полем component
func (l *Logger) WithComponent(component string) *Logger {
	return l.With(zap.String("component", component))
}

// WithMint возвращает логгер с полем mint
func (l *Logger) WithMint(mint string) *Logger {
	return l.With(zap.String("mint", mint))
}

// WithTradeID возвращает логгер с полем trade_id
func (l *Logger) WithTradeID(tradeID string) *Logger {
	return l.With(zap.String("trade_id", tradeID))
}

// Sugar возвращает sugar-вариант логгера
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// ============================================================
// Глобальные функции логирования
// ============================================================

func Debug(msg string, fields ...zap.Field) {
	GetGlobalLogger().Logger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetGlobalLogger().Logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetGlobalLogger().Logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetGlobalLogger().Logger.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	GetGlobalLogger().Logger.Fatal(msg, fields...)
}

func Debugf(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Errorf(template, args...)
}

// ============================================================
// Конструкторы доменных полей
// ============================================================

// Mint - поле с mint-адресом токена
func Mint(mint string) zap.Field {
	return zap.String("mint", mint)
}

// TradeID - поле с идентификатором сделки
func TradeID(id string) zap.Field {
	return zap.String("trade_id", id)
}

// TxRef - поле со ссылкой на транзакцию
func TxRef(ref string) zap.Field {
	return zap.String("tx_ref", ref)
}

// Price - поле с ценой
func Price(price float64) zap.Field {
	return zap.Float64("price", price)
}

// Amount - поле с объёмом в SOL
func Amount(amount float64) zap.Field {
	return zap.Float64("amount", amount)
}

// PNL - поле с прибылью/убытком
func PNL(pnl float64) zap.Field {
	return zap.Float64("pnl", pnl)
}

// Risk - поле с уровнем риска
func Risk(level string) zap.Field {
	return zap.String("risk_level", level)
}

// Side - поле со стороной сделки (buy/sell)
func Side(side string) zap.Field {
	return zap.String("side", side)
}

// Latency - поле с задержкой в миллисекундах
func Latency(ms float64) zap.Field {
	return zap.Float64("latency_ms", ms)
}

// RequestID - поле с идентификатором запроса
func RequestID(id string) zap.Field {
	return zap.String("request_id", id)
}

// Component - поле с именем компонента
func Component(name string) zap.Field {
	return zap.String("component", name)
}

// Переэкспорт стандартных конструкторов zap,
// чтобы пакетам не требовался прямой импорт zap
var (
	String  = zap.String
	Int     = zap.Int
	Int64   = zap.Int64
	Float64 = zap.Float64
	Bool    = zap.Bool
	Err     = zap.Error
	Any     = zap.Any
)

// fieldsToInterface преобразует zap-поля в плоский список пар ключ-значение
// для sugar-логгера
func fieldsToInterface(fields []zap.Field) []interface{} {
	result := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		var value interface{}
		switch f.Type {
		case zapcore.StringType:
			value = f.String
		case zapcore.Int64Type, zapcore.Int32Type:
			value = f.Integer
		case zapcore.Float64Type:
			value = math.Float64frombits(uint64(f.Integer))
		case zapcore.BoolType:
			value = f.Integer == 1
		default:
			value = f.Interface
		}
		result = append(result, f.Key, value)
	}
	return result
}
