package transform

import "strings"

func (s *Session) transformService(res Resource) []Resource {
	if s.dotted == nil {
		return nil
	}

	provider := strings.TrimPrefix(res.Name, ServicePrefix)
	if !s.dotted.Contains([]byte(provider)) {
		return nil
	}

	return []Resource{{Name: ServicePrefix + s.dotted.ReplaceString(provider), Data: res.Data}}
}

func (s *Session) transformText(res Resource) []Resource {
	name := s.rename(res.Name)

	if !s.text.Match(res.Data) {
		if name == res.Name {
			return nil
		}

		return []Resource{{Name: name, Data: res.Data}}
	}

	data := s.text.ReplaceAllFunc(res.Data, func(m []byte) []byte {
		return s.textTo[string(m)]
	})

	return []Resource{{Name: name, Data: data}}
}
