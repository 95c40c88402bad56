package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	parts := []string{}
	if a.account != nil {
		parts = append(parts, a.account.Email)
	}
	if a.monitor.SimulateOffline() {
		parts = append(parts, "offline*")
	} else if a.monitor.EffectiveOnline() {
		parts = append(parts, "online")
	} else {
		parts = append(parts, "offline")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the OSCA field CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.login(ctx)

	for {
		fmt.Printf("osca %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: list, register, schedule, pending, sync [operation_id], offline, online, status, exit")
			} else {
				fmt.Println("Available commands: login, status, exit")
			}
		case "login":
			a.login(ctx)
		case "list":
			a.list(ctx)
		case "register":
			a.registerSenior(ctx)
		case "schedule":
			a.scheduleAppointment(ctx)
		case "pending":
			a.pending(ctx)
		case "sync":
			a.sync(ctx, parts[1:])
		case "offline":
			a.monitor.SetSimulateOffline(true)
			fmt.Println("Simulated offline: network calls are suspended until 'online'.")
		case "online":
			a.monitor.SetSimulateOffline(false)
			fmt.Println("Simulated offline cleared.")
		case "status":
			a.status(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
