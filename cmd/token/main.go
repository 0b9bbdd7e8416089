// token emite un JWT firmado con JWT_SECRET para operar la API sin un proveedor de identidad.
//
// Uso: go run ./cmd/token -user <id> -role admin|bodeguero|consulta
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/jwt"
)

func main() {
	var userID, role string
	flag.StringVar(&userID, "user", "", "ID del usuario (queda como actor de los ajustes)")
	flag.StringVar(&role, "role", jwt.RoleConsulta, "Rol: admin, bodeguero o consulta")
	flag.Parse()

	if userID == "" {
		fmt.Fprintln(os.Stderr, "-user es obligatorio")
		os.Exit(1)
	}
	switch role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleConsulta:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", role)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
