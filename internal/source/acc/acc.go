// Package acc adapts Assetto Corsa Competizione's UDP broadcasting
// protocol to the source.Adapter contract, grounded on
// toonknapen-accbroadcastingsdk/v3's network.Client (ConnectListenAndCallback,
// the On* callback fields) rather than PsybeDev-tracktic's shared-memory
// ACC connector, since the broadcasting protocol works cross-platform and
// the pack carries real, readable source for it. Connection-lifecycle
// logging goes through rs/zerolog exactly as
// toonknapen-accbroadcastingsdk/v3/test/testclient/main.go wires it.
package acc

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/toonknapen/accbroadcastingsdk/v3/network"

	"github.com/racetelem/ibtstream/internal/telemetry"
	"github.com/racetelem/ibtstream/internal/unit"
)

const key = "acc"

// Config holds the UDP broadcasting endpoint and credentials ACC's
// Remote Telemetry settings must have configured.
type Config struct {
	Address            string
	DisplayName        string
	ConnectionPassword string
	CommandPassword    string
	UpdateIntervalMs   int32
	TimeoutMs          int32
}

// DefaultConfig matches toonknapen-accbroadcastingsdk/v3/test/testclient's
// example invocation.
func DefaultConfig() Config {
	return Config{
		Address:          "127.0.0.1:9000",
		DisplayName:      "ibtstream",
		UpdateIntervalMs: 250,
		TimeoutMs:        5000,
	}
}

// Adapter streams car and session state from a running ACC session over
// its UDP broadcasting interface. There is no lightweight process probe
// for this protocol (unlike a shared-memory adapter), so Detect itself
// performs a short connect-and-disconnect cycle.
type Adapter struct {
	cfg Config
	log zerolog.Logger

	mu     sync.Mutex
	client *network.Client
	active bool

	focusedCarIdx int32
	trackName     string
	trackMeters   int32
	latestCar     *network.RealTimeCarUpdate
	latestUpdate  *network.RealTimeUpdate
	tick          uint64
}

// New builds an ACC adapter against cfg, logging connection lifecycle
// events through log.
func New(cfg Config, log zerolog.Logger) *Adapter {
	return &Adapter{cfg: cfg, log: log}
}

func (a *Adapter) Key() string  { return key }
func (a *Adapter) Name() string { return "Assetto Corsa Competizione" }

// Detect connects briefly and reports whether ACC accepted the
// broadcasting handshake; this is the only available probe for a UDP
// protocol with no shared-memory existence check.
func (a *Adapter) Detect() bool {
	if a.IsActive() {
		return true
	}
	probe := &network.Client{Logger: a.log}
	done := make(chan bool, 1)
	probe.OnConnected = func(int32) {
		select {
		case done <- true:
		default:
		}
	}

	go probe.ConnectListenAndCallback(a.cfg.Address, a.cfg.DisplayName, a.cfg.ConnectionPassword, a.cfg.UpdateIntervalMs, a.cfg.CommandPassword, 1000)

	select {
	case ok := <-done:
		probe.RequestDisconnect()
		return ok
	case <-time.After(1200 * time.Millisecond):
		probe.RequestDisconnect()
		return false
	}
}

func (a *Adapter) Start() error {
	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		return nil
	}

	client := &network.Client{Logger: a.log}
	client.OnDisconnected = func() {
		a.mu.Lock()
		a.active = false
		a.mu.Unlock()
	}
	client.OnRealTimeUpdate = a.onRealTimeUpdate
	client.OnRealTimeCarUpdate = a.onRealTimeCarUpdate
	client.OnTrackData = a.onTrackData

	a.client = client
	a.active = true
	a.mu.Unlock()

	go client.ConnectListenAndCallback(a.cfg.Address, a.cfg.DisplayName, a.cfg.ConnectionPassword, a.cfg.UpdateIntervalMs, a.cfg.CommandPassword, a.cfg.TimeoutMs)

	return nil
}

func (a *Adapter) Stop() error {
	a.mu.Lock()
	client := a.client
	a.active = false
	a.client = nil
	a.mu.Unlock()
	if client != nil {
		client.RequestDisconnect()
	}
	return nil
}

func (a *Adapter) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *Adapter) onTrackData(td network.TrackData) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trackName = td.Name
	a.trackMeters = td.Meters
	if a.client != nil {
		a.client.RequestEntryList()
	}
}

func (a *Adapter) onRealTimeUpdate(u network.RealTimeUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.focusedCarIdx = u.FocusedCarIndex
	up := u
	a.latestUpdate = &up
}

func (a *Adapter) onRealTimeCarUpdate(c network.RealTimeCarUpdate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if int32(c.Id) != a.focusedCarIdx {
		return
	}
	cu := c
	a.latestCar = &cu
}

// ReadFrame builds a Frame from the most recently received
// RealTimeUpdate/RealTimeCarUpdate pair for the focused car. Returns nil
// until both have arrived at least once.
func (a *Adapter) ReadFrame() (*telemetry.Frame, error) {
	a.mu.Lock()
	update := a.latestUpdate
	car := a.latestCar
	trackName := a.trackName
	trackMeters := a.trackMeters
	a.mu.Unlock()

	if update == nil || car == nil {
		return nil, nil
	}

	a.mu.Lock()
	a.tick++
	tick := a.tick
	a.mu.Unlock()

	speed := unit.MetersPerSecond(float64(car.Kmh) / 3.6)
	gear := car.Gear
	lapNum := int(car.Laps)
	lapPct := unit.NewPercentage(float64(car.SplinePosition))
	currentLapSecs := unit.Seconds(float64(car.CurrentLap.LapTimeMs) / 1000.0)
	lastLapSecs := unit.Seconds(float64(car.LastLap.LapTimeMs) / 1000.0)
	bestLapSecs := unit.Seconds(float64(car.BestSessionLap.LapTimeMs) / 1000.0)
	onPitRoad := car.CarLocation == network.CarLocationPitlane || car.CarLocation == network.CarLocationPitEntry || car.CarLocation == network.CarLocationPitExit

	sessionType := accSessionType(update.SessionType)
	sessionState := accSessionState(update.Phase)
	position := int(car.Position)

	frame := &telemetry.Frame{
		Header: telemetry.Header{
			Timestamp: time.Now(),
			Source:    key,
			Tick:      &tick,
		},
		Vehicle: &telemetry.Vehicle{
			Speed:   &speed,
			Gear:    &gear,
			OnTrack: ptrBool(!onPitRoad),
		},
		Timing: &telemetry.Timing{
			LapNumber:      &lapNum,
			LapDistancePct: &lapPct,
			CurrentLapTime: &currentLapSecs,
			LastLapTime:    &lastLapSecs,
			BestLapTime:    &bestLapSecs,
			RacePosition:   &position,
		},
		Session: &telemetry.Session{
			Type:        &sessionType,
			State:       &sessionState,
			Elapsed:     ptrSeconds(float64(update.SessionTime) / 1000.0),
			Remaining:   ptrSeconds(float64(update.SessionEndTime) / 1000.0),
			TrackName:   &trackName,
			TrackLength: ptrMeters(float64(trackMeters)),
		},
		Weather: &telemetry.Weather{
			AirTemp:   ptrCelsius(float64(update.AmbientTemp)),
			TrackTemp: ptrCelsius(float64(update.TrackTemp)),
		},
		Pit: &telemetry.Pit{
			OnPitRoad: ptrBool(onPitRoad),
		},
	}
	return frame, nil
}

func accSessionType(t byte) telemetry.SessionType {
	switch t {
	case network.SessionTypePractice:
		return telemetry.SessionTypePractice
	case network.SessionTypeQualifying, network.SessionTypeSuperpole:
		return telemetry.SessionTypeQualifying
	case network.SessionTypeRace:
		return telemetry.SessionTypeRace
	case network.SessionTypeHotlap, network.SessionTypeHotlapSuperpole:
		return telemetry.SessionTypeHotlap
	case network.SessionTypeHotstint:
		return telemetry.SessionTypePractice
	default:
		return telemetry.SessionTypeOther
	}
}

func accSessionState(phase byte) telemetry.SessionState {
	switch phase {
	case network.SessionPhaseNONE:
		return telemetry.SessionStateInvalid
	case network.SessionPhaseStarting, network.SessionPhasePreFormation, network.SessionPhaseFormationLap:
		return telemetry.SessionStateWarmup
	case network.SessionPhasePreSession:
		return telemetry.SessionStateParadeLaps
	case network.SessionPhaseSession:
		return telemetry.SessionStateRacing
	case network.SessionPhaseSessionOver:
		return telemetry.SessionStateCheckered
	default:
		return telemetry.SessionStateCooldown
	}
}

func ptrBool(v bool) *bool { return &v }

func ptrSeconds(v float64) *unit.Seconds {
	s := unit.Seconds(v)
	return &s
}

func ptrCelsius(v float64) *unit.Celsius {
	c := unit.Celsius(v)
	return &c
}

func ptrMeters(v float64) *unit.Meters {
	m := unit.Meters(v)
	return &m
}
