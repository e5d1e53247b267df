package conversation

// Script holds every outbound text the engine can send. Texts are loaded
// from configuration at boot; DefaultScript supplies the stock campaign
// wording.
type Script struct {
	// Introduction greets a passive lead that messaged us first.
	Introduction string
	// Clarification re-asks for a yes/no when the reply was not understood.
	Clarification string
	// Acceptance confirms a known lead's agreement and closes the flow.
	Acceptance string
	// DetailsRequest asks an unknown lead for their case details.
	DetailsRequest string
	// DetailsRepeat re-asks when the submitted details were too short.
	DetailsRepeat string
	// DetailsThanks acknowledges submitted details and closes the flow.
	DetailsThanks string
	// Closing acknowledges a refusal and closes the flow.
	Closing string
	// AlreadyRegistered answers any message after the flow closed.
	AlreadyRegistered string
}

// DefaultScript returns the stock Portuguese campaign texts.
func DefaultScript() Script {
	return Script{
		Introduction:      "Olá! Sou o assistente virtual da Dominus Ativos Judiciais. Vimos que você pode ter um processo em andamento. Gostaria de receber uma proposta de antecipação? Responda SIM para receber ou NÃO para encerrar o contato.",
		Clarification:     "Desculpe, não entendi. Responda SIM para receber uma proposta ou NÃO para encerrar o contato.",
		Acceptance:        "Excelente! Vou encaminhar seus dados para análise, em breve um analista entrará em contato!",
		DetailsRequest:    "Ótimo! Para localizarmos seu caso, envie por favor o número do processo e seu nome completo.",
		DetailsRepeat:     "Para seguirmos, preciso do número do processo e do seu nome completo. Pode enviar em uma única mensagem?",
		DetailsThanks:     "Obrigado! Seus dados foram encaminhados para análise, em breve um analista entrará em contato.",
		Closing:           "Entendido, agradecemos o retorno. Encerramos o contato por aqui. Caso mude de ideia, é só responder esta mensagem.",
		AlreadyRegistered: "Seu atendimento já está registrado com nossa equipe. Em breve um analista entrará em contato!",
	}
}
