package httpx

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedLocales = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var portuguese = map[string]string{
	"Validation failed":                  "Falha na validação",
	"Token expired":                      "Token expirado",
	"Invalid token":                      "Token inválido",
	"Authentication required":            "Autenticação necessária",
	"Access denied":                      "Acesso negado",
	"Resource not found":                 "Recurso não encontrado",
	"Method not allowed":                 "Método não permitido",
	"Resource already exists":            "Recurso já existe",
	"Resource is still in use":           "Recurso ainda está em uso",
	"Referenced resource does not exist": "Recurso referenciado não existe",
	"Role is still assigned to users":    "Perfil ainda está atribuído a usuários",
	"Cannot assign a role with permissions you do not hold": "Não é possível atribuir um perfil com permissões que você não possui",
	"Too many requests":                   "Muitas requisições, tente novamente mais tarde",
	"Service unavailable":                 "Serviço indisponível",
	"Internal server error":               "Erro interno do servidor",
	"Invalid request body":                "Corpo da requisição inválido",
	"Invalid credentials":                 "Credenciais inválidas",
	"Invalid identifier":                  "Identificador inválido",
	"System roles cannot be renamed":      "Perfis do sistema não podem ser renomeados",
	"System roles cannot be deleted":      "Perfis do sistema não podem ser excluídos",
	"Unknown permission":                  "Permissão desconhecida",
	"Role not found":                      "Perfil não encontrado",
	"Role already exists":                 "Perfil já existe",
	"Cannot assign a role above your own": "Não é possível atribuir um perfil acima do seu",
	"Prospect already reviewed":           "Prospect já avaliado",
	"Request already processed":           "Requisição já processada",
	"Integration not configured":          "Integração não configurada",
	"Logged out":                          "Sessão encerrada",
	"Role deleted":                        "Perfil excluído",
	"Email already registered":            "Email já cadastrado",
	"Invalid role name":                   "Nome de perfil inválido",
	"System roles cannot be deactivated":  "Perfis do sistema não podem ser desativados",
	"Unknown role":                        "Perfil desconhecido",
	"Invalid date":                        "Data inválida",
	"Invalid date range":                  "Intervalo de datas inválido",
}

func init() {
	for key, translation := range portuguese {
		_ = message.SetString(language.BrazilianPortuguese, key, translation)
	}
}

// Localize renders msg in the best language advertised by Accept-Language.
// English is returned when nothing matches.
func Localize(r *http.Request, msg string) string {
	if r == nil || msg == "" {
		return msg
	}
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return msg
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return msg
	}
	_, idx, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return msg
	}
	return message.NewPrinter(supportedLocales[idx]).Sprintf(msg)
}
