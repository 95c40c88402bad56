package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"osca-hub-go/internal/client/localstore"
	"osca-hub-go/internal/client/syncer"
	syncdomain "osca-hub-go/internal/domain/sync"

	"github.com/google/uuid"
)

type seniorPayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`

	BarangayCode string `json:"barangay_code"`
	BarangayName string `json:"barangay_name"`
	Address      string `json:"address,omitempty"`

	EmergencyName         string `json:"emergency_name"`
	EmergencyPhone        string `json:"emergency_phone"`
	EmergencyRelationship string `json:"emergency_relationship"`

	HousingCondition string  `json:"housing_condition"`
	HealthCondition  string  `json:"health_condition"`
	LivingCondition  string  `json:"living_condition"`
	MonthlyIncome    float64 `json:"monthly_income"`
	MonthlyPension   float64 `json:"monthly_pension"`

	Email    string `json:"email"`
	Password string `json:"password"`
}

type appointmentPayload struct {
	SeniorID      string `json:"senior_id,omitempty"`
	SeniorLocalID string `json:"senior_local_id,omitempty"`
	Type          string `json:"type"`
	ScheduledAt   string `json:"scheduled_at"`
	Location      string `json:"location"`
	Notes         string `json:"notes,omitempty"`
}

func (a *App) login(ctx context.Context) {
	if !a.monitor.EffectiveOnline() {
		// Probe once directly so a fresh start does not have to wait for
		// the watcher tick.
		if err := a.api.Ping(ctx); err == nil && !a.monitor.SimulateOffline() {
			a.monitor.SetOnline(true)
		}
	}
	if !a.monitor.EffectiveOnline() {
		fmt.Println("Offline: login requires a connection. Captured work stays queued.")
		return
	}

	email := a.promptString("Email", true)
	password := a.promptString("Password", true)

	account, err := a.api.Login(ctx, email, password)
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	a.account = account
	fmt.Printf("Logged in as %s (%s)\n", account.FullName, account.Role)
}

func (a *App) list(ctx context.Context) {
	if a.monitor.EffectiveOnline() {
		seniors, err := a.api.ListSeniors(ctx)
		if err != nil {
			fmt.Println("List failed:", err)
			return
		}
		for _, senior := range seniors {
			err := a.store.UpsertCachedSenior(ctx, localstore.CachedSenior{
				ID:           senior.ID,
				FirstName:    senior.FirstName,
				LastName:     senior.LastName,
				BarangayCode: senior.BarangayCode,
				BarangayName: senior.BarangayName,
			})
			if err != nil {
				fmt.Println("Warning: local cache write failed:", err)
				break
			}
		}
	}

	cached, err := a.store.ListCachedSeniors(ctx)
	if err != nil {
		fmt.Println("Local read failed:", err)
		return
	}
	if len(cached) == 0 {
		fmt.Println("No records.")
		return
	}
	for _, senior := range cached {
		marker := ""
		if senior.Pending {
			marker = " [pending sync]"
		}
		fmt.Printf("%s  %s, %s  (%s)%s\n", senior.ID, senior.LastName, senior.FirstName, senior.BarangayName, marker)
	}
}

// registerSenior captures a registration. The record is always written to
// the local queue first; when the link is up it is replayed immediately.
func (a *App) registerSenior(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return
	}

	payload := seniorPayload{
		FirstName:   a.promptString("First name", true),
		LastName:    a.promptString("Last name", true),
		DateOfBirth: a.promptString("Date of birth (YYYY-MM-DD)", true),
		Gender:      a.promptString("Gender", true),
	}

	if a.account.BarangayCode != nil {
		payload.BarangayCode = *a.account.BarangayCode
		fmt.Println("Barangay code:", payload.BarangayCode)
	} else {
		payload.BarangayCode = a.promptString("Barangay code", true)
	}
	payload.BarangayName = a.promptString("Barangay name", true)
	payload.Address = a.promptString("Address", false)

	payload.EmergencyName = a.promptString("Emergency contact name", true)
	payload.EmergencyPhone = a.promptString("Emergency contact phone", true)
	payload.EmergencyRelationship = a.promptString("Emergency contact relationship", true)

	payload.HousingCondition = a.promptChoice("Housing condition", []string{"owned", "rented", "with_family", "institution", "other"})
	payload.HealthCondition = a.promptChoice("Health condition", []string{"excellent", "good", "fair", "poor", "critical"})
	payload.LivingCondition = a.promptChoice("Living condition", []string{"independent", "with_family", "with_caregiver", "institution", "other"})
	payload.MonthlyIncome = a.promptFloat("Monthly income")
	payload.MonthlyPension = a.promptFloat("Monthly pension")

	payload.Email = a.promptString("Login email for the senior", true)
	payload.Password = a.promptString("Login password (min 8 chars)", true)

	encoded, err := json.Marshal(payload)
	if err != nil {
		fmt.Println("Capture failed:", err)
		return
	}

	localID := uuid.NewString()
	err = a.store.Enqueue(ctx, localstore.Operation{
		OperationID: uuid.NewString(),
		Type:        string(syncdomain.OperationTypeCreateSenior),
		LocalID:     localID,
		Payload:     encoded,
	})
	if err != nil {
		fmt.Println("Capture failed:", err)
		return
	}

	err = a.store.UpsertCachedSenior(ctx, localstore.CachedSenior{
		ID:           localID,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		BarangayCode: payload.BarangayCode,
		BarangayName: payload.BarangayName,
		Pending:      true,
	})
	if err != nil {
		fmt.Println("Warning: local cache write failed:", err)
	}

	fmt.Println("Captured locally as", localID)
	a.maybeSync(ctx)
}

func (a *App) scheduleAppointment(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return
	}

	seniorID := a.promptString("Senior id (server or local)", true)

	payload := appointmentPayload{
		Type:        a.promptChoice("Type", []string{"medical", "basca"}),
		ScheduledAt: a.promptString("Scheduled at (RFC 3339, e.g. 2026-09-01T09:00:00Z)", true),
		Location:    a.promptString("Location", true),
		Notes:       a.promptString("Notes", false),
	}

	// A device-generated id that has not synced yet must travel as a local
	// reference; the server resolves it through its mapping log.
	if a.isPendingLocal(ctx, seniorID) {
		payload.SeniorLocalID = seniorID
	} else {
		payload.SeniorID = seniorID
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		fmt.Println("Capture failed:", err)
		return
	}

	err = a.store.Enqueue(ctx, localstore.Operation{
		OperationID: uuid.NewString(),
		Type:        string(syncdomain.OperationTypeCreateAppointment),
		LocalID:     uuid.NewString(),
		Payload:     encoded,
	})
	if err != nil {
		fmt.Println("Capture failed:", err)
		return
	}

	fmt.Println("Appointment captured.")
	a.maybeSync(ctx)
}

func (a *App) pending(ctx context.Context) {
	operations, err := a.store.Pending(ctx)
	if err != nil {
		fmt.Println("Local read failed:", err)
		return
	}
	if len(operations) == 0 {
		fmt.Println("Queue is empty.")
		return
	}
	for _, op := range operations {
		line := fmt.Sprintf("%s  %s  attempts=%d", op.OperationID, op.Type, op.Attempts)
		if op.LastError != nil {
			line += "  last_error=" + *op.LastError
		}
		fmt.Println(line)
	}
}

// sync drains the whole queue, or replays a single queued operation when an
// operation id is given.
func (a *App) sync(ctx context.Context, args []string) {
	var (
		report *syncer.Report
		err    error
	)
	if len(args) > 0 {
		report, err = a.syncer.SyncOne(ctx, args[0])
	} else {
		report, err = a.syncer.SyncAll(ctx)
	}
	if err != nil {
		switch {
		case errors.Is(err, syncer.ErrOffline):
			fmt.Println("Offline: sync will be possible once the connection is back.")
		case errors.Is(err, syncer.ErrOperationNotFound):
			fmt.Println("No queued operation with that id (see 'pending').")
		default:
			fmt.Println("Sync failed:", err)
		}
		return
	}

	fmt.Printf("Sync done: %d total, %d applied, %d duplicate, %d failed\n",
		report.Total, report.Applied, report.Duplicate, report.Failed)
	for _, failure := range report.Failures {
		fmt.Printf("  failed %s (%s): %s\n", failure.OperationID, failure.Type, failure.Message)
	}
}

func (a *App) status(ctx context.Context) {
	count, err := a.store.PendingCount(ctx)
	if err != nil {
		fmt.Println("Local read failed:", err)
		return
	}
	fmt.Println("Effective online:", a.monitor.EffectiveOnline())
	fmt.Println("Simulated offline:", a.monitor.SimulateOffline())
	fmt.Println("Queued operations:", count)
}

func (a *App) maybeSync(ctx context.Context) {
	if !a.monitor.EffectiveOnline() {
		fmt.Println("Offline: the record will sync when the connection is back.")
		return
	}
	a.sync(ctx, nil)
}

func (a *App) isPendingLocal(ctx context.Context, id string) bool {
	cached, err := a.store.ListCachedSeniors(ctx)
	if err != nil {
		return false
	}
	for _, senior := range cached {
		if senior.ID == id {
			return senior.Pending
		}
	}
	return false
}

func (a *App) promptString(label string, required bool) string {
	for {
		fmt.Printf("%s: ", label)
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return ""
		}
		value := strings.TrimSpace(line)
		if value != "" || !required {
			return value
		}
		fmt.Println("Value is required.")
	}
}

func (a *App) promptChoice(label string, options []string) string {
	prompt := label + " (" + strings.Join(options, "/") + ")"
	for {
		value := a.promptString(prompt, true)
		for _, option := range options {
			if value == option {
				return value
			}
		}
		fmt.Println("Pick one of:", strings.Join(options, ", "))
	}
}

func (a *App) promptFloat(label string) float64 {
	for {
		value := a.promptString(label, false)
		if value == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil && parsed >= 0 {
			return parsed
		}
		fmt.Println("Enter a non-negative number.")
	}
}
