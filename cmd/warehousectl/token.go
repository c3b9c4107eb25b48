package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/warehouse-api/pkg/jwt"
)

// newTokenCmd emite un JWT firmado con JWT_SECRET para probar el API en local.
func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Genera un token de desarrollo",
		Example: `  warehousectl token --user u-1 --role admin
  curl -H "Authorization: Bearer $(warehousectl token --role vendedor)" localhost:8080/api/orders`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.App.IsProduction() {
				return fmt.Errorf("token: no disponible con APP_ENV=production")
			}
			userID, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			minutes, _ := cmd.Flags().GetInt("minutes")
			switch role {
			case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor:
			default:
				return fmt.Errorf("token: rol desconocido %q", role)
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}

			tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			log.Debug().Str("user_id", userID).Str("role", role).Int("minutes", minutes).Msg("token emitido")
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("user", "dev-user", "user_id del token")
	cmd.Flags().String("role", jwt.RoleAdmin, "rol: admin, bodeguero o vendedor")
	cmd.Flags().Int("minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	return cmd
}
