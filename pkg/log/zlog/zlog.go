package zlog

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"adventure/constant"

	"github.com/bytedance/gg/gslice"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logKey string

const loggerKey logKey = "logger"
const logDetail logKey = "log_detail"

// 未初始化时使用 Nop，保证单测里可以直接调用
var logger = zap.NewNop()

// WithLogKey
//
//	@Description:给指定context添加字段 实现类似traceid作用
//	@param ctx
//	@param fields
//	@return context.Context
func WithLogKey(ctx context.Context, fields ...zapcore.Field) context.Context {
	ctx = context.WithValue(ctx, loggerKey, withContext(ctx).With(fields...))
	detail := make([]zapcore.Field, 0)
	if _detail, ok := ctx.Value(logDetail).([]zapcore.Field); ok {
		detail = _detail
	}
	// 深拷贝防止污染
	detail = gslice.Clone(detail)
	detail = append(detail, fields...)
	return context.WithValue(ctx, logDetail, detail)
}

// 通过ctx获得logid
func GetLogId(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	detail, ok := ctx.Value(logDetail).([]zapcore.Field)
	if !ok {
		return "", false
	}
	find := gslice.Find(detail, func(field zapcore.Field) bool {
		return field.Key == constant.LOGID
	})
	logid, ok := find.Get()
	if !ok {
		return "", false
	}
	return logid.String, true
}

func InitLogger(zapLogger *zap.Logger) {
	if zapLogger == nil {
		return
	}
	logger = zapLogger
}

// Sync 刷盘
func Sync() {
	_ = logger.Sync()
}

// 从指定的context返回一个zap实例
func withContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return logger
	}
	if ctxLogger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return ctxLogger
	}
	return logger
}

func Infof(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	logger.Error(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	logger.Warn(fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf(format, v...))
}

func Fatalf(format string, v ...interface{}) {
	logger.Fatal(fmt.Sprintf(format, v...))
}

// 下面的logger方法会携带log id

func CtxInfof(ctx context.Context, format string, v ...interface{}) {
	withContext(ctx).Info(fmt.Sprintf(format, v...))
}

func CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	withContext(ctx).Error(fmt.Sprintf(format, v...))
}

func CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	withContext(ctx).Warn(fmt.Sprintf(format, v...))
}

func CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	withContext(ctx).Debug(fmt.Sprintf(format, v...))
}

// 日志里只打印长度的字段（模型原始输出、整棵节点表）
var filterFields = []string{
	"raw_response",
	"rawresponse",
	"all_nodes",
	"allnodes",
	"nodes",
}

func shouldFilter(name string) bool {
	lower := strings.ToLower(name)
	return gslice.Any(filterFields, func(f string) bool {
		return lower == f || strings.HasPrefix(lower, f)
	})
}

func summarize(v reflect.Value) any {
	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "[empty]"
		}
		return fmt.Sprintf("[length: %d]", v.Len())
	case reflect.Slice, reflect.Map, reflect.Array:
		return fmt.Sprintf("[items: %d]", v.Len())
	default:
		return "[filtered]"
	}
}

// filterLargeFields 过滤掉模型原文和节点列表，避免日志过长
// 只检查当前层级的字段，不递归检查嵌套结构
func filterLargeFields(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		result := make(map[string]interface{}, val.Len())
		for _, key := range val.MapKeys() {
			keyStr := fmt.Sprintf("%v", key.Interface())
			value := val.MapIndex(key)
			if shouldFilter(keyStr) {
				if value.Kind() == reflect.Interface {
					value = value.Elem()
				}
				result[keyStr] = summarize(value)
				continue
			}
			result[keyStr] = value.Interface()
		}
		return result
	case reflect.Struct:
		result := make(map[string]interface{})
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			fieldVal := val.Field(i)
			if !field.IsExported() {
				continue
			}
			fieldName := field.Name
			if jsonTag := field.Tag.Get("json"); jsonTag != "" && jsonTag != "-" {
				if name, _, _ := strings.Cut(jsonTag, ","); name != "" {
					fieldName = name
				}
			}
			if shouldFilter(fieldName) {
				result[fieldName] = summarize(fieldVal)
				continue
			}
			result[fieldName] = fieldVal.Interface()
		}
		return result
	}
	return data
}

func CtxAllInOne(ctx context.Context, action string, input, output any, err error) {
	if err != nil {
		// 错误时完整打印，方便排查
		withContext(ctx).Error(action+" failed", zap.Any("input", input), zap.Any("output", output), zap.Error(err))
		return
	}
	withContext(ctx).Info(action+" succeed", zap.Any("input", filterLargeFields(input)), zap.Any("output", filterLargeFields(output)))
}
