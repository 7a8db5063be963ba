package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	cvtrack "github.com/swdee/go-cvtrack"
	"github.com/swdee/go-cvtrack/detect"
)

func newProcessCommand(configPath *string) *cobra.Command {

	var (
		targetName string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Annotate a local video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath)

			if err != nil {
				return err
			}

			target, err := cvtrack.ParseTarget(targetName)

			if err != nil {
				return err
			}

			inPath := args[0]

			if !cvtrack.AllowedExtension(inPath) {
				return fmt.Errorf("unsupported file type: %s", inPath)
			}

			if outPath == "" {
				outPath = filepath.Join(filepath.Dir(inPath),
					"processed_"+filepath.Base(inPath))
			}

			det, err := detect.New(target, cfg.Detectors)

			if err != nil {
				return err
			}

			defer det.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := cvtrack.ProcessVideo(ctx, det, inPath, outPath,
				cvtrack.VideoOptions{Codecs: cfg.Video.Codecs})

			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"output":     res.OutputPath,
				"codec":      res.Codec,
				"frames":     res.Frames,
				"detections": res.Stats.Detections,
				"started":    res.Stats.Started,
				"lost":       res.Stats.Lost,
				"elapsed":    res.Elapsed,
				"frame_time": res.MeanFrameTime,
			}).Info("Video processed")

			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&targetName, "target", "t", "human", "Object to detect: human, dog or car")
	fs.StringVarP(&outPath, "output", "o", "", "Output video path, defaults to processed_<input> beside the input")

	return cmd
}
