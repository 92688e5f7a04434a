package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"willitserver"
)

// newAppLogger honours the configured log_level, falling back to info.
func newAppLogger(cfg *willitserver.Config) (*zap.Logger, error) {
	level := "info"
	if cfg != nil && cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	return willitserver.NewLogger(level)
}

func main() {
	configPath := flag.String("config", "", "path to a yaml config")
	flag.Parse()

	var (
		cfg  *willitserver.Config
		opts []willitserver.FuncOption
		err  error
	)
	if *configPath != "" {
		cfg, err = willitserver.LoadConfig(*configPath)
		if err != nil {
			panic(err)
		}
		opts, err = cfg.Options()
		if err != nil {
			panic(err)
		}
	}

	logger, err := newAppLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	actions, err := NewTodoActions(NewStore(), opts...)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	for _, text := range []string{"write the checker", "wrap the actions"} {
		todo, err := actions.CreateTodo(ctx, text)
		if err != nil {
			logger.Error("create todo failed", zap.Error(err))
			continue
		}
		logger.Info("todo created", zap.Int64("id", todo.Id))
	}

	node, err := actions.RenderTodos(ctx)
	if err != nil {
		panic(err)
	}
	if err = node.Render(ctx, os.Stdout); err != nil {
		panic(err)
	}
}
