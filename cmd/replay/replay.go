// Command replay plays a precomputed control trajectory onto the soft robot
// while tracking its pose, then reports how closely the robot followed the
// plan.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"go.bug.st/serial"

	"github.com/em-ni/sorolearn/internal/analysis"
	"github.com/em-ni/sorolearn/internal/config"
	"github.com/em-ni/sorolearn/internal/playback"
	"github.com/em-ni/sorolearn/internal/pressure"
	"github.com/em-ni/sorolearn/internal/replaydb"
	"github.com/em-ni/sorolearn/internal/report"
	"github.com/em-ni/sorolearn/internal/robot"
	"github.com/em-ni/sorolearn/internal/tracker"
	"github.com/em-ni/sorolearn/internal/trajectory"
)

var (
	devMode     = flag.Bool("dev", false, "Run with a mock robot and a simulated tracker")
	trajPath    = flag.String("traj", "planned_trajectory.csv", "Planned trajectory CSV")
	offsetsPath = flag.String("offsets", "", "Pressure offsets file (empty means zero offsets)")
	configPath  = flag.String("config", "", "Replay tuning JSON (empty means defaults)")
	robotPort   = flag.String("robot-port", "/dev/ttyUSB0", "Robot command serial port (ignored in dev mode)")
	trackerPort = flag.String("tracker-port", "/dev/ttyUSB1", "Landmark stream serial port (ignored in dev mode)")
	dbPath      = flag.String("db", "replay_runs.db", "Run-log database (empty disables the run log)")
	reportDir   = flag.String("report-dir", "reports", "Directory for post-run charts (empty disables reports)")
)

func main() {
	flag.Parse()

	cfg := config.EmptyReplayConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	plan, err := trajectory.Load(*trajPath)
	if err != nil {
		log.Fatalf("failed to load trajectory: %v", err)
	}
	log.Printf("loaded trajectory with %d steps, %d control channels", plan.Steps(), plan.ControlWidth())

	offsets := make([]float64, plan.ControlWidth())
	if *offsetsPath != "" {
		offsets, err = pressure.LoadOffsets(*offsetsPath)
		if err != nil {
			log.Fatalf("failed to load pressure offsets: %v", err)
		}
	}
	if len(offsets) != plan.ControlWidth() {
		log.Fatalf("offsets have %d values but the plan has %d control channels", len(offsets), plan.ControlWidth())
	}

	var port robot.CommandPort
	if *devMode {
		port = robot.NewMockPort()
		log.Printf("dev mode: commands go to a mock port")
	} else {
		port, err = robot.OpenSerialPort(*robotPort, robot.PortOptions{BaudRate: cfg.GetSerialBaudRate()})
		if err != nil {
			log.Fatalf("failed to open robot port: %v", err)
		}
	}
	defer port.Close()

	// The tracker runs its own refresh loop; in dev mode it is a fixed bent
	// pose so the whole pipeline exercises without hardware.
	var trk tracker.Tracker
	var stream *tracker.Stream
	var trackerDev serial.Port
	if *devMode {
		trk = devTracker()
	} else {
		mode, err := robot.PortOptions{BaudRate: cfg.GetSerialBaudRate()}.SerialMode()
		if err != nil {
			log.Fatalf("invalid tracker port options: %v", err)
		}
		trackerDev, err = serial.Open(*trackerPort, mode)
		if err != nil {
			log.Fatalf("failed to open tracker port: %v", err)
		}
		stream = tracker.NewStream(trackerDev)
		trk = stream
	}

	controller, err := playback.NewController(plan, offsets, port, playback.Config{
		StepPeriod: cfg.GetStepPeriod(),
	})
	if err != nil {
		log.Fatalf("failed to build controller: %v", err)
	}

	observer, err := analysis.NewObserver(plan, trk, controller.Progress(), analysis.Config{
		Interval:   cfg.GetObserveInterval(),
		ArcSamples: cfg.GetArcSamples(),
	})
	if err != nil {
		log.Fatalf("failed to build observer: %v", err)
	}

	var arcMu sync.Mutex
	var lastArc []r3.Vector
	observer.SetArcSink(func(pts []r3.Vector) {
		arcMu.Lock()
		lastArc = pts
		arcMu.Unlock()
	})

	// SIGINT/SIGTERM cancels everything; playback finishing (or aborting)
	// does too, so the process always reaches the final report.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	started := time.Now()
	var wg sync.WaitGroup
	var runErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = controller.Run(ctx)
		cancel()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		observer.Run(ctx)
	}()

	if stream != nil {
		// The stream blocks in reads; closing the device unblocks it on
		// shutdown.
		go func() {
			<-ctx.Done()
			trackerDev.Close()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("tracker stream stopped: %v", err)
			}
		}()
	}

	wg.Wait()
	finished := time.Now()

	abortReason := ""
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		abortReason = runErr.Error()
		log.Printf("playback aborted: %v", runErr)
	}

	summary, ok := observer.Summary()
	if ok {
		for _, line := range summaryLines(summary, controller.Dispatched()) {
			log.Print(line)
		}
	} else {
		log.Printf("no tracking errors recorded (tracker never had a fix?)")
	}

	if *dbPath != "" {
		recordRun(*dbPath, replaydb.Run{
			ID:          uuid.NewString(),
			PlanPath:    *trajPath,
			Steps:       plan.Steps(),
			StepPeriod:  cfg.GetStepPeriod(),
			Dispatches:  controller.Dispatched(),
			StartedAt:   started,
			FinishedAt:  finished,
			AbortReason: abortReason,
			MeanError:   summary.Mean,
			MaxError:    summary.Max,
			FinalError:  summary.Final,
			ErrSamples:  summary.Samples,
		}, observer.Errors())
	}

	if *reportDir != "" {
		arcMu.Lock()
		arc := lastArc
		arcMu.Unlock()
		writeReports(*reportDir, report.TrajectoryData{
			Planned: plan.References(),
			Actual:  observer.Positions(),
			Arc:     arc,
		}, observer.Errors())
	}
}

// devTracker returns a simulated tracker holding a fixed bent pose: base at
// the origin, tip one unit out, body off-axis so the landmark triple defines
// an arc.
func devTracker() *tracker.Simulated {
	sim := tracker.NewSimulated()
	sim.SetBase(r3.Vector{})
	sim.SetTip(r3.Vector{X: 1})
	sim.SetBody(r3.Vector{X: 0.5, Y: 0.25})
	return sim
}

// summaryLines formats the end-of-run statistics block.
func summaryLines(s analysis.Summary, dispatches int) []string {
	return []string{
		"trajectory following results:",
		fmt.Sprintf("  dispatches:    %d", dispatches),
		fmt.Sprintf("  error samples: %d", s.Samples),
		fmt.Sprintf("  average error: %.4f", s.Mean),
		fmt.Sprintf("  maximum error: %.4f", s.Max),
		fmt.Sprintf("  final error:   %.4f", s.Final),
	}
}

func recordRun(path string, run replaydb.Run, errs []float64) {
	db, err := replaydb.Open(path)
	if err != nil {
		log.Printf("failed to open run log: %v", err)
		return
	}
	defer db.Close()

	if err := db.RecordRun(run); err != nil {
		log.Printf("failed to record run: %v", err)
		return
	}
	if err := db.RecordErrors(run.ID, errs); err != nil {
		log.Printf("failed to record error history: %v", err)
		return
	}
	log.Printf("recorded run %s in %s", run.ID, path)
}

func writeReports(dir string, data report.TrajectoryData, errs []float64) {
	htmlPath := filepath.Join(dir, "trajectory.html")
	if err := report.WriteTrajectoryHTML(htmlPath, data); err != nil {
		log.Printf("failed to write trajectory chart: %v", err)
	} else {
		log.Printf("wrote %s", htmlPath)
	}

	if len(errs) == 0 {
		return
	}
	pngPath := filepath.Join(dir, "tracking_error.png")
	if err := report.WriteErrorPNG(pngPath, errs); err != nil {
		log.Printf("failed to write error plot: %v", err)
	} else {
		log.Printf("wrote %s", pngPath)
	}
}
