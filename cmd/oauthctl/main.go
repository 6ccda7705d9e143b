package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Admin-API-Key", c.APIKey)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("OAUTH_ADMIN_URL", "http://localhost:8080")
		apiKey  = envOr("OAUTH_ADMIN_KEY", "")
		out     = envOr("OAUTH_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "oauthctl",
		Short: "CLI admin del servicio oauth (reload de provisión y revocación)",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env OAUTH_ADMIN_URL)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", apiKey, "Admin API key (env OAUTH_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: timeout}}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cl.BaseURL = baseURL
		cl.APIKey = apiKey
		cl.OutFormat = out
		return nil
	}

	provisionCmd := &cobra.Command{Use: "provision", Short: "Operaciones sobre el snapshot de provisión"}

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Forzar recarga del snapshot de tenants (requiere X-Admin-API-Key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cl.APIKey == "" {
				return fmt.Errorf("falta API key (flag --api-key o env OAUTH_ADMIN_KEY)")
			}
			status, body, err := cl.do(http.MethodGet, "/admin/provision/reload")
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("reload fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	provisionCmd.AddCommand(reloadCmd)

	revokeCmd := &cobra.Command{Use: "revoke", Short: "Revocación de tokens"}

	revokeUserCmd := &cobra.Command{
		Use:   "user <userId>",
		Short: "Revocar todos los tokens de un usuario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return revokePath(cl, "/tokens/user/"+url.PathEscape(args[0]))
		},
	}

	revokeTenantCmd := &cobra.Command{
		Use:   "tenant <clientId>",
		Short: "Revocar todos los tokens emitidos para un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return revokePath(cl, "/tokens/tenant/"+url.PathEscape(args[0]))
		},
	}

	revokeAccessCmd := &cobra.Command{
		Use:   "access <token>",
		Short: "Revocar un access token puntual",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return revokePath(cl, "/accessToken/"+url.PathEscape(args[0]))
		},
	}

	revokeRefreshCmd := &cobra.Command{
		Use:   "refresh <token>",
		Short: "Revocar un refresh token puntual",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return revokePath(cl, "/refreshToken/"+url.PathEscape(args[0]))
		},
	}

	revokeCmd.AddCommand(revokeUserCmd, revokeTenantCmd, revokeAccessCmd, revokeRefreshCmd)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Chequear readiness del servicio",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, "/readyz")
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("not ready: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	root.AddCommand(provisionCmd, revokeCmd, healthCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func revokePath(cl *client, path string) error {
	status, body, err := cl.do(http.MethodDelete, path)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("revoke fallo: status=%d body=%s", status, string(body))
	}
	cl.print(status, body)
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
