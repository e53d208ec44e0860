package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZetoOfficial/follow-diff/internal/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logrus.Infof("Получен сигнал: %s. Завершение работы...", sig)
		cancel()
	}()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}

	logrus.Info("Программа завершена успешно.")
}
