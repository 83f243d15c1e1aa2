package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/deeplink"
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/internal/wellknown"
)

func publishCmd(flags *globalFlags) *cobra.Command {
	var (
		bucket string
		region string
		prefix string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the well-known association files to S3",
		Long: `Render apple-app-site-association and assetlinks.json from the route
table and upload them to the configured bucket.

Credentials come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and the
optional AWS_SESSION_TOKEN. Use --dry-run to print the files instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if region != "" {
				cfg.Publish.Region = region
			}
			if prefix != "" {
				cfg.Publish.Prefix = prefix
			}

			logger := flags.logger(cmd.ErrOrStderr())
			app, err := deeplink.New(deeplink.Options{Config: cfg, Logger: logger})
			if err != nil {
				return err
			}
			defer app.Close()

			files, err := app.WellKnownFiles()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errors.New("DL303").
					WithDetail("No app identifiers are configured").
					WithSuggestion("Set serve.appleTeamID and serve.bundleID, or serve.androidPackage")
			}

			w := cmd.OutOrStdout()
			if dryRun {
				for _, f := range files {
					info(w, "/%s (%s)", f.Path, f.ContentType)
					w.Write(f.Body)
					if len(f.Body) > 0 && f.Body[len(f.Body)-1] != '\n' {
						w.Write([]byte("\n"))
					}
				}
				return nil
			}

			if cfg.Publish.Region == "" {
				return errors.New("DL303").
					WithDetail("No region configured for publishing").
					WithSuggestion("Set publish.region, AWS_REGION or pass --region")
			}

			pub := wellknown.NewPublisher(
				wellknown.NewS3Client(cfg.Publish.Region),
				cfg.Publish.Bucket,
				wellknown.WithPrefix(cfg.Publish.Prefix),
				wellknown.WithLogger(logger),
			)
			keys, err := pub.Publish(cmd.Context(), files)
			for _, k := range keys {
				success(w, "Uploaded s3://%s/%s", cfg.Publish.Bucket, k)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (default from config)")
	cmd.Flags().StringVar(&region, "region", "", "Bucket region (default from config or AWS_REGION)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the files instead of uploading")

	return cmd
}
