// Command popupctl drives a popup hosted by a popup host from the point of
// view of a nested frame.
//
// Usage:
//
//	popupctl [flags] show X Y WIDTH HEIGHT
//	popupctl [flags] hide
//	popupctl [flags] visible
//	popupctl [flags] contains X Y
//	popupctl [flags] size
//	popupctl [flags] resize WIDTH HEIGHT
//	popupctl [flags] list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/crossframe/wsframe"
	"github.com/seth-js/yomichan-ru/internal/domain/popup"
	"github.com/seth-js/yomichan-ru/internal/frameoffset"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/config"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/logging"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
)

var errUsage = errors.New("usage: popupctl [flags] show|hide|visible|contains|size|resize|list [args]")

type options struct {
	url       string
	api       string
	rootFrame int
	frame     int
	parent    int
	x, y      float64
	popupID   string
	timeout   time.Duration
	ttl       time.Duration
	dev       bool
}

func main() {
	cfg := config.LoadOrDefault()

	var opts options
	flag.StringVar(&opts.url, "url", "ws://localhost:"+cfg.Server.Port+cfg.CrossFrame.Path, "Cross-frame websocket URL of the host")
	flag.StringVar(&opts.api, "api", "http://localhost:"+cfg.Server.Port, "HTTP API URL of the host")
	flag.IntVar(&opts.rootFrame, "root-frame", cfg.CrossFrame.RootFrameID, "Id of the frame hosting the popups")
	flag.IntVar(&opts.frame, "frame", 1, "Id of this frame")
	flag.IntVar(&opts.parent, "parent", 0, "Id of the parent frame of this frame")
	flag.Float64Var(&opts.x, "x", 0, "Horizontal position of this frame inside its parent")
	flag.Float64Var(&opts.y, "y", 0, "Vertical position of this frame inside its parent")
	flag.StringVar(&opts.popupID, "popup", "", "Popup id; a new popup is created when empty")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Overall timeout")
	flag.DurationVar(&opts.ttl, "offset-ttl", cfg.Popup.OffsetTTL, "Frame offset cache lifetime")
	flag.BoolVar(&opts.dev, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	logger := logging.NewOrNop(logging.ForFrame("warn", opts.dev, opts.frame))
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	lifecycle := crossframe.NewLifecycle()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	unloadOnSignal(sigs, lifecycle, cancel, logger.Logger)

	result, err := run(ctx, opts, flag.Args(), logger.Logger, lifecycle)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	out, err := sonic.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// unloadOnSignal marks lifecycle unloaded and cancels the command when a
// signal arrives. Popup calls cut short by the cancellation then return
// their defaults instead of failing.
func unloadOnSignal(sigs <-chan os.Signal, lifecycle *crossframe.Lifecycle, cancel context.CancelFunc, logger *zap.Logger) {
	go func() {
		sig, ok := <-sigs
		if !ok {
			return
		}
		logger.Info("unloading", zap.Stringer("signal", sig))
		lifecycle.MarkUnloaded()
		cancel()
	}()
}

func run(ctx context.Context, opts options, args []string, logger *zap.Logger, unload popup.UnloadState) (any, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	if args[0] == "list" {
		if len(args) != 1 {
			return nil, errUsage
		}
		return listPopups(ctx, opts.api)
	}

	client, err := wsframe.Dial(ctx, opts.url, nil)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	client.WithLogger(logger)
	invoker := crossframe.NewGuard(client, crossframe.DefaultGuardSettings()).WithLogger(logger)

	forwarder := frameoffset.NewForwarder(invoker, opts.rootFrame, opts.frame)
	if err := forwarder.Register(ctx, opts.parent, opts.x, opts.y); err != nil {
		return nil, err
	}

	req := crossframe.Params{}
	if opts.popupID != "" {
		req["id"] = opts.popupID
	}
	raw, err := invoker.Invoke(ctx, opts.rootFrame, popup.ActionGetOrCreatePopup, req)
	if err != nil {
		return nil, err
	}
	info, err := crossframe.Decode[types.PopupInfo](raw)
	if err != nil {
		return nil, err
	}

	proxy := popup.NewProxy(info, invoker, forwarder, unload).
		WithLogger(logger).
		WithOffsetTTL(opts.ttl)
	proxy.OnOffsetNotFound(func() {
		logger.Warn("frame offset not found", zap.Int("frame_id", opts.frame))
	})

	return execute(ctx, proxy, args)
}

func execute(ctx context.Context, p popup.Popup, args []string) (any, error) {
	nums, err := parseFloats(args[1:])
	if err != nil {
		return nil, err
	}

	switch cmd := args[0]; {
	case cmd == "show" && len(nums) == 4:
		rect := &types.ElementRect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
		err := p.ShowContent(ctx, types.ShowDetails{ElementRect: rect}, types.DisplayDetails{})
		return map[string]any{"id": p.ID(), "shown": err == nil}, err
	case cmd == "hide" && len(nums) == 0:
		err := p.Hide(ctx, true)
		return map[string]any{"id": p.ID(), "hidden": err == nil}, err
	case cmd == "visible" && len(nums) == 0:
		visible, err := p.IsVisible(ctx)
		return map[string]any{"id": p.ID(), "visible": visible}, err
	case cmd == "contains" && len(nums) == 2:
		inside, err := p.ContainsPoint(ctx, nums[0], nums[1])
		return map[string]any{"id": p.ID(), "contains": inside}, err
	case cmd == "size" && len(nums) == 0:
		return p.FrameSize(ctx)
	case cmd == "resize" && len(nums) == 2:
		ok, err := p.SetFrameSize(ctx, nums[0], nums[1])
		return map[string]any{"id": p.ID(), "resized": ok}, err
	}
	return nil, errUsage
}

func parseFloats(args []string) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, a)
		}
		nums[i] = v
	}
	return nums, nil
}
