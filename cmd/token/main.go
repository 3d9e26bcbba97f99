// token emite un JWT firmado con JWT_SECRET para probar la API en local.
//
// Uso: go run ./cmd/token -user u-1 -role admin -minutes 60
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

func main() {
	user := flag.String("user", "local", "user_id del token")
	role := flag.String("role", "admin", "admin | bodeguero | vendedor")
	minutes := flag.Int("minutes", 60, "vigencia en minutos")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Env == "production" {
		fmt.Fprintln(os.Stderr, "token: no disponible con APP_ENV=production")
		os.Exit(1)
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, *minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
