// Package mq 的 zerolog 适配器，把 Watermill 日志接到应用日志器上，
// 文档生命周期事件的发布/订阅日志与其余服务日志走同一条管道.
package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// zerologAdapter 将 zerolog 适配为 watermill.LoggerAdapter.
type zerologAdapter struct {
	l *zerolog.Logger
}

func (z *zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	ev := z.l.Error().Err(err)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}

	ev.Msg(msg)
}

func (z *zerologAdapter) Info(msg string, fields watermill.LogFields) {
	ev := z.l.Info()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}

	ev.Msg(msg)
}

func (z *zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	ev := z.l.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}

	ev.Msg(msg)
}

func (z *zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	ev := z.l.Trace()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}

	ev.Msg(msg)
}

func (z *zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	l := z.l.With()

	for k, v := range fields {
		l = l.Interface(k, v)
	}

	logger := l.Logger()

	return &zerologAdapter{l: &logger}
}

// String 实现 fmt.Stringer.
func (z *zerologAdapter) String() string { return "zerolog-watermill-adapter" }
