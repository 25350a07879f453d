package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"multichat/backend/internal/model"
	"multichat/backend/internal/service"
)

var (
	setupPlatforms []string
	setupURLs      map[string]string
	setupTokens    map[string]string
	setupModels    map[string]string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose and configure the backends",
	Long: `Enable exactly the given platforms and store their settings.

An on-device platform without --model gets the first model the local
runtime has.

Examples:
  multichat setup --platform ollama --url ollama=http://localhost:11434/v1 --model ollama=llama3
  multichat setup --platform ollama,on_device --url ollama=http://gpu-box:8080/v1 --token ollama=secret`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringSliceVarP(&setupPlatforms, "platform", "p", nil, "platforms to enable (ollama, on_device)")
	setupCmd.Flags().StringToStringVar(&setupURLs, "url", nil, "API address per platform")
	setupCmd.Flags().StringToStringVar(&setupTokens, "token", nil, "API token per platform")
	setupCmd.Flags().StringToStringVar(&setupModels, "model", nil, "default model per platform")
	_ = setupCmd.MarkFlagRequired("platform")
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	selected := make([]model.APIType, 0, len(setupPlatforms))
	for _, name := range setupPlatforms {
		api, err := model.ParseAPIType(name)
		if err != nil {
			return err
		}
		selected = append(selected, api)
	}

	var catalogs map[model.APIType][]string
	if slices.Contains(selected, model.APIOnDevice) && setupModels[string(model.APIOnDevice)] == "" {
		names, err := application.Models.Catalog(ctx)
		if err != nil {
			application.Logger.Warn("Could not list local models for setup", "error", err)
		}
		catalogs = map[model.APIType][]string{model.APIOnDevice: names}
	}

	flow := service.NewSetupFlow(application.Settings, catalogs)
	for _, api := range selected {
		flow.ToggleSelected(api)
	}
	for _, api := range model.APITypes() {
		key := string(api)
		flow.SetAPIURL(api, setupURLs[key])
		flow.SetToken(api, setupTokens[key])
		if m := setupModels[key]; m != "" {
			flow.SetModel(api, m)
		} else if slices.Contains(selected, api) {
			flow.SetDefaultModel(api, 0)
		}
	}

	if err := flow.Save(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range flow.Platforms() {
		if !p.Enabled {
			continue
		}
		modelName := "-"
		if p.Model != nil {
			modelName = *p.Model
		}
		fmt.Fprintf(out, "%-10s enabled  url=%s model=%s\n", p.Name, p.APIURL, modelName)
	}
	fmt.Fprintln(out, "Setup complete.")
	return nil
}
